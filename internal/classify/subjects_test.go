package classify

import (
	"testing"

	"github.com/ghiridhars/ebook-organizer/internal/taxonomy"
	"github.com/stretchr/testify/assert"
)

func TestClassifySubjects(t *testing.T) {
	tests := []struct {
		name     string
		subjects []string
		want     taxonomy.Classification
		ok       bool
	}{
		{"empty", nil, taxonomy.Classification{}, false},
		{"biography beats everything", []string{"Fantasy", "Autobiography"}, nf("Biography & Memoir"), true},
		{"bisac fantasy", []string{"FICTION / Fantasy / Epic"}, fic("Fantasy"), true},
		{"bisac thriller", []string{"Fiction / Thrillers / Suspense"}, fic("Mystery & Thriller"), true},
		{"bisac generic fiction", []string{"Fiction / General"}, fic("Literary"), true},
		{"bisac self-help", []string{"Self-Help / Personal Growth"}, nf("Self-Help"), true},
		{"bisac business", []string{"BUSINESS & ECONOMICS / Leadership"}, nf("Business & Finance"), true},
		{"bisac history", []string{"History / Europe / General"}, nf("History"), true},
		{"bisac cooking", []string{"Cooking / Regional"}, nf("Health & Wellness"), true},
		{"bare history is generic", []string{"History"}, taxonomy.Classification{}, false},
		{"keyword mystery", []string{"Detective and mystery stories"}, fic("Mystery & Thriller"), true},
		{"keyword programming", []string{"Computer programs"}, nf("Science & Technology"), true},
		{"short subjects skipped", []string{"sf"}, taxonomy.Classification{}, false},
		{"alias match", []string{"Anime"}, taxonomy.Classification{Category: taxonomy.Comics, SubGenre: "Manga"}, true},
		{"non-fiction outranks fiction", []string{"Dragons", "Meditation"}, nf("Philosophy & Religion"), true},
		{"earlier subject wins within a category", []string{"Dragons", "Cyberpunk"}, fic("Fantasy"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ClassifySubjects(tt.subjects)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
