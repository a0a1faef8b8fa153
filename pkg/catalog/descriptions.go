package catalog

type description struct {
	text string
	tags []string
}

// knownComponents is keyed by component file base name.
var knownComponents = map[string]description{
	"HomeScreen":          {"Landing screen with featured services and quick actions", []string{"home", "landing"}},
	"BookingScreen":       {"Appointment booking flow", []string{"booking", "appointments"}},
	"ServicesScreen":      {"Browsable list of offered services", []string{"services", "list"}},
	"ProfileScreen":       {"Customer profile and preferences", []string{"profile", "account"}},
	"SettingsScreen":      {"Application settings", []string{"settings"}},
	"ServiceCard":         {"Card showing a service with price and duration", []string{"card", "service", "price"}},
	"BookingCard":         {"Summary card for an upcoming appointment", []string{"card", "appointment"}},
	"StaffCard":           {"Staff member with photo and specialties", []string{"card", "staff"}},
	"ReviewCard":          {"Customer review with rating", []string{"card", "review", "rating"}},
	"TimeSlotPicker":      {"Grid of available appointment times", []string{"picker", "time", "booking"}},
	"DatePicker":          {"Calendar date selection", []string{"picker", "date"}},
	"BookingForm":         {"Customer details form for a booking", []string{"form", "input", "booking"}},
	"ContactForm":         {"Name, email and message form", []string{"form", "input", "contact"}},
	"SearchBar":           {"Search input with clear button", []string{"input", "search"}},
	"Header":              {"Top app bar with title and actions", []string{"header", "navigation"}},
	"TabBar":              {"Bottom tab navigation", []string{"tabs", "navigation"}},
	"Container":           {"Padded content container", []string{"container", "spacing"}},
	"Button":              {"Primary action button", []string{"button", "action"}},
	"Badge":               {"Small status label", []string{"badge", "status"}},
	"LoadingSpinner":      {"Activity indicator", []string{"loading", "feedback"}},
	"EmptyState":          {"Placeholder for empty lists", []string{"empty", "feedback"}},
	"HeroSectionBlock":    {"Full-width hero with headline and call to action", []string{"hero", "marketing"}},
	"ServiceListTemplate": {"Template listing services by category", []string{"template", "list"}},
}

// categoryDefaults applies when a component has no table entry.
var categoryDefaults = map[string]description{
	"screens":       {"Full application screen", []string{"screen"}},
	"templates":     {"Reusable screen template", []string{"template"}},
	"booking":       {"Booking flow component", []string{"booking"}},
	"services":      {"Service catalogue component", []string{"service"}},
	"cards":         {"Content card", []string{"card"}},
	"forms":         {"Form input component", []string{"form", "input"}},
	"layout":        {"Layout component", []string{"layout"}},
	"navigation":    {"Navigation component", []string{"navigation"}},
	"common":        {"Shared UI element", []string{"common"}},
	GenericCategory: {"Custom component", []string{"custom"}},
}

// describe returns the description and tags for the component named key.
func describe(key, category string) (string, []string) {
	if d, ok := knownComponents[key]; ok {
		return d.text, d.tags
	}
	if d, ok := categoryDefaults[category]; ok {
		return d.text, d.tags
	}
	return categoryDefaults[GenericCategory].text, categoryDefaults[GenericCategory].tags
}
