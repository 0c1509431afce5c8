package turn

import (
	"testing"

	"datui/model"
)

func TestSplitParts(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []model.Part
	}{
		{
			name: "no fences",
			text: "The mean of views is 42.",
			want: nil,
		},
		{
			name: "unterminated fence",
			text: "Here is code:\n```python\nimport pandas as pd",
			want: nil,
		},
		{
			name: "code only",
			text: "```python\nprint(df.mean())\n```",
			want: []model.Part{
				{Kind: model.PartCode, Text: "print(df.mean())", Language: "python"},
			},
		},
		{
			name: "text code text",
			text: "Load the data:\n```python\ndf = pd.read_csv('videos.csv')\n```\nThen inspect df.head().",
			want: []model.Part{
				{Kind: model.PartText, Text: "Load the data:\n"},
				{Kind: model.PartCode, Text: "df = pd.read_csv('videos.csv')", Language: "python"},
				{Kind: model.PartText, Text: "\nThen inspect df.head()."},
			},
		},
		{
			name: "two code blocks",
			text: "```python\na = 1\n```\n```python\nb = 2\n```",
			want: []model.Part{
				{Kind: model.PartCode, Text: "a = 1", Language: "python"},
				{Kind: model.PartCode, Text: "b = 2", Language: "python"},
			},
		},
		{
			name: "no language tag",
			text: "```\nls -la\n```",
			want: []model.Part{
				{Kind: model.PartCode, Text: "ls -la", Language: ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitParts(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d parts, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i].Kind != tt.want[i].Kind {
					t.Errorf("part %d: Kind = %v, want %v", i, got[i].Kind, tt.want[i].Kind)
				}
				if got[i].Text != tt.want[i].Text {
					t.Errorf("part %d: Text = %q, want %q", i, got[i].Text, tt.want[i].Text)
				}
				if got[i].Language != tt.want[i].Language {
					t.Errorf("part %d: Language = %q, want %q", i, got[i].Language, tt.want[i].Language)
				}
			}
		})
	}
}
