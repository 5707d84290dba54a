package unidiff

import (
	"reflect"
	"strings"
	"testing"
)

const sampleDiff = `diff --git a/a.txt b/a.txt
index 1111111..2222222 100644
--- a/a.txt
+++ b/a.txt
@@ -1,4 +1,4 @@ func main
 one
-two
+two changed
 three
 four
@@ -10,3 +10,4 @@
 ten
 eleven
+twelve
 thirteen
`

func TestParse_SingleFile(t *testing.T) {
	files := Parse(sampleDiff)
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
	f := files[0]
	if f.Unparsable {
		t.Fatalf("unexpected parse failure: %s", f.ParseErr)
	}
	if f.Path() != "a.txt" || f.Op != FileModified {
		t.Fatalf("unexpected file identity: %+v", f)
	}
	if len(f.Hunks) != 2 {
		t.Fatalf("expected 2 hunks, got %d", len(f.Hunks))
	}
	h := f.Hunks[0]
	if h.OldStart != 1 || h.OldCount != 4 || h.NewStart != 1 || h.NewCount != 4 {
		t.Fatalf("unexpected hunk ranges: %+v", h)
	}
	if h.Section != "func main" {
		t.Fatalf("unexpected section: %q", h.Section)
	}
	kinds := []LineKind{LineContext, LineDeleted, LineAdded, LineContext, LineContext}
	if len(h.Lines) != len(kinds) {
		t.Fatalf("expected %d lines, got %d", len(kinds), len(h.Lines))
	}
	for i, k := range kinds {
		if h.Lines[i].Kind != k {
			t.Fatalf("line %d: expected kind %v, got %v (%q)", i, k, h.Lines[i].Kind, h.Lines[i].Text)
		}
	}
	if h.Lines[2].Text != "two changed" {
		t.Fatalf("unexpected added text: %q", h.Lines[2].Text)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	files := Parse(sampleDiff)
	var b strings.Builder
	for _, h := range files[0].Hunks {
		b.WriteString(h.Reconstruct())
	}
	// everything from the first @@ on must reproduce exactly
	idx := strings.Index(sampleDiff, "@@")
	if got, want := b.String(), sampleDiff[idx:]; got != want {
		t.Fatalf("round trip mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestParse_Idempotent(t *testing.T) {
	a := Parse(sampleDiff)
	b := Parse(sampleDiff)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("parsing the same input twice yielded different structures")
	}
}

func TestParse_StripsEscapes(t *testing.T) {
	colored := "diff --git a/c.txt b/c.txt\n" +
		"--- a/c.txt\n" +
		"+++ b/c.txt\n" +
		"\x1b[36m@@ -1,2 +1,2 @@\x1b[m\n" +
		" same\n" +
		"\x1b[31m-old\x1b[m\n" +
		"\x1b[32m+new\x1b[m\n"
	files := Parse(colored)
	if len(files) != 1 || files[0].Unparsable {
		t.Fatalf("unexpected result: %+v", files)
	}
	h := files[0].Hunks[0]
	if h.Header != "@@ -1,2 +1,2 @@" {
		t.Fatalf("header not stripped: %q", h.Header)
	}
	for _, l := range h.Lines {
		if strings.ContainsRune(l.Text, 0x1b) {
			t.Fatalf("escape sequence left in text: %q", l.Text)
		}
	}
	if h.Lines[1].Text != "old" || h.Lines[1].Style.Fg != "1" {
		t.Fatalf("deletion style not captured: %+v", h.Lines[1])
	}
	if h.Lines[2].Text != "new" || h.Lines[2].Style.Fg != "2" {
		t.Fatalf("addition style not captured: %+v", h.Lines[2])
	}
	if !h.Lines[0].Style.IsZero() {
		t.Fatalf("context line should be unstyled, got %+v", h.Lines[0].Style)
	}
}

func TestParse_256ColorEscapes(t *testing.T) {
	colored := "diff --git a/c.txt b/c.txt\n" +
		"@@ -1 +1 @@\n" +
		"\x1b[38;5;196m-old\x1b[0m\n" +
		"\x1b[38;2;0;255;0m+new\x1b[0m\n"
	files := Parse(colored)
	h := files[0].Hunks[0]
	if h.Lines[0].Style.Fg != "196" {
		t.Fatalf("expected palette fg 196, got %+v", h.Lines[0].Style)
	}
	if h.Lines[1].Style.Fg != "#00ff00" {
		t.Fatalf("expected truecolor fg, got %+v", h.Lines[1].Style)
	}
}

func TestParse_MalformedFileIsolated(t *testing.T) {
	// b.txt declares 5 lines but the body is cut short; c.txt must still
	// parse with its hunks intact.
	text := "diff --git a/b.txt b/b.txt\n" +
		"--- a/b.txt\n" +
		"+++ b/b.txt\n" +
		"@@ -1,5 +1,5 @@\n" +
		" only\n" +
		"-line\n" +
		"diff --git a/c.txt b/c.txt\n" +
		"--- a/c.txt\n" +
		"+++ b/c.txt\n" +
		"@@ -1,2 +1,2 @@\n" +
		" keep\n" +
		"-before\n" +
		"+after\n"
	files := Parse(text)
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if !files[0].Unparsable || files[0].ParseErr == "" {
		t.Fatalf("b.txt should be unparsable: %+v", files[0])
	}
	if files[1].Unparsable {
		t.Fatalf("c.txt should parse: %s", files[1].ParseErr)
	}
	if len(files[1].Hunks) != 1 || len(files[1].Hunks[0].Lines) != 3 {
		t.Fatalf("c.txt hunks damaged: %+v", files[1].Hunks)
	}
}

func TestParse_CombinedDiffIsolated(t *testing.T) {
	// during a merge conflict git interleaves combined diffs into the stream;
	// each must become its own entry, not poison the file before it
	text := "diff --git a/ok.txt b/ok.txt\n" +
		"--- a/ok.txt\n" +
		"+++ b/ok.txt\n" +
		"@@ -1,2 +1,2 @@\n" +
		" same\n" +
		"-old\n" +
		"+new\n" +
		"diff --cc conflict.txt\n" +
		"index 1111111,2222222..0000000\n" +
		"--- a/conflict.txt\n" +
		"+++ b/conflict.txt\n" +
		"@@@ -1,3 -1,3 +1,7 @@@\n" +
		"++<<<<<<< HEAD\n" +
		" +ours\n" +
		"++=======\n" +
		"+ theirs\n" +
		"++>>>>>>> other\n" +
		"diff --git a/after.txt b/after.txt\n" +
		"--- a/after.txt\n" +
		"+++ b/after.txt\n" +
		"@@ -1 +1 @@\n" +
		"-x\n" +
		"+y\n"
	files := Parse(text)
	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %d: %+v", len(files), files)
	}
	if files[0].Unparsable || len(files[0].Hunks) != 1 {
		t.Fatalf("clean file before the conflict damaged: %+v", files[0])
	}
	if files[1].Path() != "conflict.txt" || !files[1].Unparsable {
		t.Fatalf("combined diff should be its own unparsable entry: %+v", files[1])
	}
	if files[2].Unparsable || len(files[2].Hunks) != 1 {
		t.Fatalf("file after the conflict damaged: %+v", files[2])
	}
}

func TestParse_MalformedHunkHeader(t *testing.T) {
	text := "diff --git a/b.txt b/b.txt\n" +
		"@@ -1,5 +1,5\n" + // missing closing @@
		" x\n"
	files := Parse(text)
	if len(files) != 1 || !files[0].Unparsable {
		t.Fatalf("expected unparsable file, got %+v", files)
	}
}

func TestParse_RenameAndBinary(t *testing.T) {
	text := "diff --git a/old name.txt b/new name.txt\n" +
		"similarity index 90%\n" +
		"rename from old name.txt\n" +
		"rename to new name.txt\n" +
		"diff --git a/img.png b/img.png\n" +
		"index 1111111..2222222 100644\n" +
		"Binary files a/img.png and b/img.png differ\n"
	files := Parse(text)
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if files[0].Op != FileRenamed || files[0].OldPath != "old name.txt" || files[0].NewPath != "new name.txt" {
		t.Fatalf("rename not recognized: %+v", files[0])
	}
	if !files[1].Binary || len(files[1].Hunks) != 0 {
		t.Fatalf("binary not recognized: %+v", files[1])
	}
}

func TestParse_QuotedPaths(t *testing.T) {
	text := "diff --git \"a/sp ace.txt\" \"b/sp ace.txt\"\n" +
		"@@ -1 +1 @@\n" +
		"-a\n" +
		"+b\n"
	files := Parse(text)
	if files[0].Path() != "sp ace.txt" {
		t.Fatalf("quoted path mishandled: %q", files[0].Path())
	}
}

func TestParse_NewFileAndNoNewline(t *testing.T) {
	text := "diff --git a/n.txt b/n.txt\n" +
		"new file mode 100644\n" +
		"--- /dev/null\n" +
		"+++ b/n.txt\n" +
		"@@ -0,0 +1 @@\n" +
		"+tail\n" +
		"\\ No newline at end of file\n"
	files := Parse(text)
	f := files[0]
	if f.Op != FileAdded || f.OldPath != "" {
		t.Fatalf("new file not recognized: %+v", f)
	}
	l := f.Hunks[0].Lines[0]
	if !l.NoNewline {
		t.Fatal("expected NoNewline marker on last line")
	}
	if !strings.Contains(f.Hunks[0].Reconstruct(), "\\ No newline at end of file") {
		t.Fatal("reconstruct dropped the no-newline marker")
	}
}
