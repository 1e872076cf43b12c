package rows

import (
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		delim rune
		want  []Row
	}{
		{
			name:  "quoted delimiter stays in one value",
			text:  "Name,Influence,Ventures\nAlice,\"Hired Bob, Jr.\",Acme",
			delim: Comma,
			want:  []Row{{Line: 2, Values: []string{"Alice", "Hired Bob, Jr.", "Acme"}}},
		},
		{
			name:  "doubled quote is a literal quote",
			text:  "h\nAlice,\"He said \"\"hi\"\"\",x",
			delim: Comma,
			want:  []Row{{Line: 2, Values: []string{"Alice", `He said "hi"`, "x"}}},
		},
		{
			name:  "blank and whitespace-only lines are skipped",
			text:  "h\n\nAlice,b\n   \nBob,c\n",
			delim: Comma,
			want: []Row{
				{Line: 3, Values: []string{"Alice", "b"}},
				{Line: 5, Values: []string{"Bob", "c"}},
			},
		},
		{
			name:  "values are trimmed",
			text:  "h\n  Alice  ,  Friends with Bob ",
			delim: Comma,
			want:  []Row{{Line: 2, Values: []string{"Alice", "Friends with Bob"}}},
		},
		{
			name:  "pipe layout",
			text:  "Name|Influence|Ventures\nAlice|Friends with Bob, Jr.|Acme",
			delim: Pipe,
			want:  []Row{{Line: 2, Values: []string{"Alice", "Friends with Bob, Jr.", "Acme"}}},
		},
		{
			name:  "crlf line endings",
			text:  "h\r\nAlice,b\r\nBob,c\r\n",
			delim: Comma,
			want: []Row{
				{Line: 2, Values: []string{"Alice", "b"}},
				{Line: 3, Values: []string{"Bob", "c"}},
			},
		},
		{
			name:  "newline inside quotes continues the record",
			text:  "h\nAlice,\"line1\nline2\",c\nBob,d",
			delim: Comma,
			want: []Row{
				{Line: 2, Values: []string{"Alice", "line1\nline2", "c"}},
				{Line: 4, Values: []string{"Bob", "d"}},
			},
		},
		{
			name:  "unterminated quote degrades instead of failing",
			text:  "h\nAlice,\"open,b\nCarol,d",
			delim: Comma,
			want:  []Row{{Line: 2, Values: []string{"Alice", "open,b\nCarol,d"}}},
		},
		{
			name:  "leading blank lines before header",
			text:  "\n\nName\nAlice",
			delim: Comma,
			want:  []Row{{Line: 4, Values: []string{"Alice"}}},
		},
		{
			name:  "row of empty fields is not blank",
			text:  "h\n,,,",
			delim: Comma,
			want:  []Row{{Line: 2, Values: []string{"", "", "", ""}}},
		},
		{
			name:  "header only",
			text:  "Name,Influence\n",
			delim: Comma,
			want:  nil,
		},
		{
			name:  "empty text",
			text:  "",
			delim: Comma,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.text, tt.delim)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestRowValue(t *testing.T) {
	r := Row{Values: []string{"a", "b"}}
	if r.Value(1) != "b" {
		t.Errorf("Value(1) = %q, want b", r.Value(1))
	}
	if r.Value(5) != "" || r.Value(-1) != "" {
		t.Error("Out-of-range Value() should be empty")
	}
}
