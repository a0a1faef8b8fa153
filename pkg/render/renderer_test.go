package render

import (
	"strings"
	"testing"

	"github.com/vango-dev/studio/pkg/vdom"
)

func TestRenderElement(t *testing.T) {
	tree := vdom.Div(
		vdom.Class("phone"),
		vdom.Data("component-id", "cards/Card"),
		vdom.H2(vdom.Text("Card & Co")),
		vdom.El("img", vdom.Src("a.png")),
	)

	got, err := HTML(tree)
	if err != nil {
		t.Fatal(err)
	}
	want := `<div class="phone" data-component-id="cards/Card"><h2>Card &amp; Co</h2><img src="a.png"></div>`
	if got != want {
		t.Errorf("HTML() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderAttributesDeterministic(t *testing.T) {
	tree := vdom.Div(
		vdom.Data("z", "1"),
		vdom.Data("a", "2"),
		vdom.ID("m"),
		vdom.Attr{Key: "hidden", Value: true},
		vdom.Attr{Key: "disabled", Value: false},
		vdom.Attr{Key: "_internal", Value: "x"},
		vdom.Attr{Key: "width", Value: 375},
	)

	first, _ := HTML(tree)
	for i := 0; i < 5; i++ {
		again, _ := HTML(tree)
		if again != first {
			t.Fatalf("render %d differs:\n%s\n%s", i, again, first)
		}
	}
	want := `<div data-a="2" data-z="1" hidden id="m" width="375"></div>`
	if first != want {
		t.Errorf("HTML() = %s, want %s", first, want)
	}
}

func TestRenderComponentAndFragment(t *testing.T) {
	comp := vdom.Func(func() *vdom.VNode {
		return vdom.Fragment(vdom.Span(vdom.Text("a")), vdom.Raw("<b>raw</b>"))
	})

	got, err := HTML(vdom.Div(comp))
	if err != nil {
		t.Fatal(err)
	}
	if got != "<div><span>a</span><b>raw</b></div>" {
		t.Errorf("HTML() = %s", got)
	}
}

func TestRenderErrors(t *testing.T) {
	if _, err := HTML(&vdom.VNode{Kind: vdom.VKind(99)}); err == nil {
		t.Error("unknown kind should fail")
	}
	if _, err := HTML(&vdom.VNode{Kind: vdom.KindElement}); err == nil {
		t.Error("element without tag should fail")
	}
	if got, err := HTML(nil); err != nil || got != "" {
		t.Errorf("nil tree = %q, %v", got, err)
	}
}

func TestRenderPretty(t *testing.T) {
	r := NewRenderer(RendererConfig{Pretty: true})
	got, err := r.RenderToString(vdom.Div(vdom.P(vdom.Text("x"))))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "\n  <p>") {
		t.Errorf("pretty output not indented:\n%s", got)
	}
}
