package prompt

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kbukum/openbatch/errors"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		values map[string]string
		want   string
		unused []string
	}{
		{"no placeholders", "hello", nil, "hello", nil},
		{"single", "Hi {name}!", map[string]string{"name": "Ada"}, "Hi Ada!", nil},
		{"repeated", "{x}-{x}", map[string]string{"x": "1"}, "1-1", nil},
		{"escaped braces", "{{literal}} {v}", map[string]string{"v": "ok"}, "{literal} ok", nil},
		{"non identifier braces kept", `{"a": 1} {v}`, map[string]string{"v": "x"}, `{"a": 1} x`, nil},
		{"unclosed brace", "{open", nil, "{open", nil},
		{"unused keys sorted", "{a}", map[string]string{"a": "1", "z": "2", "m": "3"}, "1", []string{"m", "z"}},
		{"no recursion", "{a}", map[string]string{"a": "{b}", "b": "nope"}, "{b}", []string{"b"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Render(tc.text, tc.values)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if got.Text != tc.want {
				t.Errorf("Render() = %q, want %q", got.Text, tc.want)
			}
			if !reflect.DeepEqual(got.Unused, tc.unused) {
				t.Errorf("Unused = %v, want %v", got.Unused, tc.unused)
			}
		})
	}
}

func TestRender_Deterministic(t *testing.T) {
	values := map[string]string{"a": "1", "b": "2", "c": "3"}
	first, err := Render("{c}{a}{b}", values)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		again, _ := Render("{c}{a}{b}", values)
		if again.Text != first.Text {
			t.Fatalf("render %d differs: %q vs %q", i, again.Text, first.Text)
		}
	}
}

func TestRender_MissingPlaceholder(t *testing.T) {
	got, err := Render("{greeting}, {name}. {greeting}!", map[string]string{"other": "x"})
	if got.Text != "" {
		t.Errorf("expected no partial output, got %q", got.Text)
	}
	if !errors.HasCode(err, errors.ErrCodeMissingPlaceholder) {
		t.Fatalf("expected MISSING_PLACEHOLDER, got %v", err)
	}
	appErr, _ := errors.AsAppError(err)
	names := appErr.Details["placeholders"].([]string)
	if !reflect.DeepEqual(names, []string{"greeting", "name"}) {
		t.Errorf("placeholders = %v, want [greeting name]", names)
	}
}

func TestPlaceholders(t *testing.T) {
	got := Placeholders("{b} {a} {{c}} {b} {1x}")
	if !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Errorf("Placeholders() = %v", got)
	}
}

func TestTemplateFormat(t *testing.T) {
	tmpl := NewTemplate(
		System("You are a {role}."),
		User("{question}"),
	)
	out, err := tmpl.Format(map[string]string{"role": "chef", "question": "Rice?", "extra": "x"})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	want := []Message{
		{Role: RoleSystem, Content: "You are a chef."},
		{Role: RoleUser, Content: "Rice?"},
	}
	if !reflect.DeepEqual(out.Messages, want) {
		t.Errorf("Messages = %v, want %v", out.Messages, want)
	}
	if !reflect.DeepEqual(out.Unused, []string{"extra"}) {
		t.Errorf("Unused = %v, want [extra]", out.Unused)
	}
	if got := tmpl.Messages()[0].Content; got != "You are a {role}." {
		t.Errorf("template mutated: %q", got)
	}
}

func TestTemplateFormat_MissingAcrossMessages(t *testing.T) {
	tmpl := NewTemplate(System("{a}"), User("{b} {c}"))
	_, err := tmpl.Format(map[string]string{"b": "x"})
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeMissingPlaceholder {
		t.Fatalf("expected MISSING_PLACEHOLDER, got %v", err)
	}
	if names := appErr.Details["placeholders"].([]string); !reflect.DeepEqual(names, []string{"a", "c"}) {
		t.Errorf("placeholders = %v, want [a c]", names)
	}
}

func TestTemplateMessagesIsCopy(t *testing.T) {
	tmpl := NewTemplate(User("hi"))
	msgs := tmpl.Messages()
	msgs[0].Content = "changed"
	if tmpl.Messages()[0].Content != "hi" {
		t.Error("Messages() must return a copy")
	}
}

func TestTemplateValidate(t *testing.T) {
	if err := NewTemplate().Validate(); err == nil {
		t.Error("expected error for empty template")
	}
	if err := NewTemplate(Message{Role: "robot", Content: "x"}).Validate(); err == nil {
		t.Error("expected error for unknown role")
	}
	if err := NewTemplate(User("x")).Validate(); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}

func TestReusablePromptBind(t *testing.T) {
	p := ReusablePrompt{ID: "pmpt_1", Version: "2", Variables: []string{"city", "day"}}

	b, err := p.Bind(map[string]string{"city": "Oslo", "day": "Mon", "spare": "x"})
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if b.ID != "pmpt_1" || b.Version != "2" {
		t.Errorf("unexpected binding %+v", b)
	}
	if !reflect.DeepEqual(b.Variables, map[string]string{"city": "Oslo", "day": "Mon"}) {
		t.Errorf("Variables = %v", b.Variables)
	}
	if !reflect.DeepEqual(b.Unused, []string{"spare"}) {
		t.Errorf("Unused = %v, want [spare]", b.Unused)
	}

	_, err = p.Bind(map[string]string{"city": "Oslo"})
	if !errors.HasCode(err, errors.ErrCodeMissingPlaceholder) {
		t.Errorf("expected MISSING_PLACEHOLDER, got %v", err)
	}

	_, err = ReusablePrompt{}.Bind(nil)
	if !errors.HasCode(err, errors.ErrCodeMissingField) {
		t.Errorf("expected MISSING_FIELD for empty id, got %v", err)
	}
}

func TestReusablePromptBind_Undeclared(t *testing.T) {
	b, err := ReusablePrompt{ID: "p"}.Bind(map[string]string{"k": "v"})
	if err != nil {
		t.Fatal(err)
	}
	if b.Variables["k"] != "v" || len(b.Unused) != 0 {
		t.Errorf("unexpected binding %+v", b)
	}
}

func TestSourceKinds(t *testing.T) {
	var s Source = NewTemplate(User("x"))
	if s.Kind() != SourceTemplate {
		t.Errorf("Kind() = %s", s.Kind())
	}
	s = ReusablePrompt{ID: "p"}
	if s.Kind() != SourceReusable {
		t.Errorf("Kind() = %s", s.Kind())
	}
}

func TestLoadTemplate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "classify.yaml")
	doc := `name: classify
messages:
  - role: system
    content: You label {kind} reviews.
  - role: user
    content: "{review}"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	tmpl, err := LoadTemplate(path)
	if err != nil {
		t.Fatalf("LoadTemplate() error = %v", err)
	}
	if tmpl.Name() != "classify" || tmpl.Len() != 2 {
		t.Errorf("unexpected template %+v", tmpl)
	}
	if !reflect.DeepEqual(tmpl.Placeholders(), []string{"kind", "review"}) {
		t.Errorf("Placeholders() = %v", tmpl.Placeholders())
	}

	_, err = LoadTemplate(filepath.Join(dir, "missing.yaml"))
	if !errors.HasCode(err, errors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestParseTemplate_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":     "messages: [",
		"no messages":  "name: x\n",
		"unknown role": "messages:\n  - role: robot\n    content: x\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseTemplate([]byte(doc)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
