package epub

import "testing"

// ---------------------------------------------------------------------------
// preprocessHTMLEntities tests
// ---------------------------------------------------------------------------

func TestPreprocessHTMLEntities_BasicReplacements(t *testing.T) {
	input := []byte(`<title>Hello&nbsp;World &mdash; An&hellip; Introduction</title>`)
	got := preprocessHTMLEntities(input)
	want := `<title>Hello&#160;World &#8212; An&#8230; Introduction</title>`
	if string(got) != want {
		t.Errorf("preprocessHTMLEntities():\n got: %s\nwant: %s", got, want)
	}
}

func TestPreprocessHTMLEntities_QuotationMarks(t *testing.T) {
	input := []byte(`&ldquo;Hello&rdquo; &lsquo;World&rsquo;`)
	got := preprocessHTMLEntities(input)
	want := `&#8220;Hello&#8221; &#8216;World&#8217;`
	if string(got) != want {
		t.Errorf("preprocessHTMLEntities():\n got: %s\nwant: %s", got, want)
	}
}

func TestPreprocessHTMLEntities_Symbols(t *testing.T) {
	input := []byte(`&copy; 2024 &reg; Company&trade; &bull; Item &middot; Sub`)
	got := preprocessHTMLEntities(input)
	want := `&#169; 2024 &#174; Company&#8482; &#8226; Item &#183; Sub`
	if string(got) != want {
		t.Errorf("preprocessHTMLEntities():\n got: %s\nwant: %s", got, want)
	}
}

func TestPreprocessHTMLEntities_AccentedChars(t *testing.T) {
	input := []byte(`caf&eacute; tr&egrave;s r&Eacute;sum&eacute;`)
	got := preprocessHTMLEntities(input)
	want := `caf&#233; tr&#232;s r&#233;sum&#233;`
	if string(got) != want {
		t.Errorf("preprocessHTMLEntities():\n got: %s\nwant: %s", got, want)
	}
}

func TestPreprocessHTMLEntities_PreservesXMLEntities(t *testing.T) {
	// &amp;, &lt;, &gt;, &quot;, &apos; are valid XML entities and must be preserved.
	input := []byte(`&amp; &lt; &gt; &quot; &apos;`)
	got := preprocessHTMLEntities(input)
	if string(got) != string(input) {
		t.Errorf("XML entities should be preserved:\n got: %s\nwant: %s", got, input)
	}
}

func TestPreprocessHTMLEntities_NoEntities(t *testing.T) {
	input := []byte(`<p>Plain text with no entities</p>`)
	got := preprocessHTMLEntities(input)
	if string(got) != string(input) {
		t.Errorf("Text without entities should be unchanged:\n got: %s\nwant: %s", got, input)
	}
}

func TestPreprocessHTMLEntities_Dashes(t *testing.T) {
	input := []byte(`2020&ndash;2024 &mdash; a range`)
	got := preprocessHTMLEntities(input)
	want := `2020&#8211;2024 &#8212; a range`
	if string(got) != want {
		t.Errorf("preprocessHTMLEntities():\n got: %s\nwant: %s", got, want)
	}
}

// ---------------------------------------------------------------------------
// chapterTitle tests
// ---------------------------------------------------------------------------

func TestChapterTitle(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"title element", chapterDoc("Chapter 1: The Beginning"), "Chapter 1: The Beginning"},
		{
			"heading fallback",
			`<html><head><title>  </title></head><body><h2>Side Story</h2></body></html>`,
			"Side Story",
		},
		{
			"h1 preferred over h2",
			`<html><body><h2>Second</h2><h1>First</h1></body></html>`,
			"First",
		},
		{
			"whitespace collapsed",
			"<html><head><title>\n  Part\tOne \n</title></head></html>",
			"Part One",
		},
		{
			"BOM and declaration",
			"\xEF\xBB\xBF" + chapterDoc("Prologue"),
			"Prologue",
		},
		{"no title", `<html><body><p>Only text.</p></body></html>`, ""},
		{"empty input", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := chapterTitle([]byte(tt.doc)); got != tt.want {
				t.Errorf("chapterTitle() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestCollapseWhitespace(t *testing.T) {
	if got := collapseWhitespace("  a \t b\n\nc "); got != "a b c" {
		t.Errorf("collapseWhitespace() = %q; want %q", got, "a b c")
	}
}
