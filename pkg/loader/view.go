package loader

import (
	"strings"

	"github.com/vango-dev/studio/pkg/vdom"
)

// frameView shows the live bundle in an iframe, or the entry source when
// there is no preview URL.
func frameView(app *App) vdom.Component {
	return vdom.Func(func() *vdom.VNode {
		if app.URL != "" {
			return vdom.Iframe(
				vdom.Class("studio-app-frame"),
				vdom.Src(app.URL),
				vdom.Title("App preview"),
				vdom.Data("tier", app.Tier),
			)
		}
		return vdom.Div(
			vdom.Class("studio-app-source"),
			vdom.Data("tier", app.Tier),
			vdom.Data("entry", app.Entry),
			vdom.Pre(vdom.Code(app.Source)),
		)
	})
}

// placeholderView renders a stand-in app listing the detected screens.
func placeholderView(h Hints, origin string) vdom.Component {
	return vdom.Func(func() *vdom.VNode {
		screens := make([]*vdom.VNode, 0, len(h.Screens))
		for _, s := range h.Screens {
			screens = append(screens, vdom.Li(
				vdom.Class("studio-placeholder-screen"),
				vdom.Data("screen", s),
				screenLabel(s),
			))
		}

		var nav *vdom.VNode
		if h.Navigation {
			kinds := "navigation"
			if len(h.Navigators) > 0 {
				kinds = strings.Join(h.Navigators, ", ") + " navigation"
			}
			nav = vdom.Nav(vdom.Class("studio-placeholder-nav"), kinds)
		}

		var body *vdom.VNode
		if len(screens) > 0 {
			body = vdom.Ul(vdom.Class("studio-placeholder-screens"), screens)
		} else {
			body = vdom.P("No screens detected.")
		}

		return vdom.Section(
			vdom.Class("studio-placeholder-app"),
			vdom.Data("tier", TierPlaceholder),
			vdom.Data("source", origin),
			vdom.H2("App preview unavailable"),
			vdom.P("Showing the structure detected in the app source."),
			nav,
			body,
		)
	})
}

func screenLabel(name string) string {
	name = strings.TrimSuffix(name, "Screen")
	var b strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
