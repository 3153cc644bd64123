// Package taxonomy holds the fixed two-level ebook taxonomy and the rules
// that map raw genre strings, folder names and titles onto it.
package taxonomy

// Other is the fallback sub-genre present in every category. It has no
// aliases and is never the target of a match.
const Other = "Other"

// Category names.
const (
	Fiction    = "Fiction"
	NonFiction = "Non-Fiction"
	Children   = "Children"
	Comics     = "Comics & Graphic Novels"
	Reference  = "Reference"
)

// SubGenre is a leaf of the taxonomy.
type SubGenre struct {
	Name    string
	Aliases []string
}

// Category is a top-level bucket with its ordered sub-genres.
type Category struct {
	Name      string
	SubGenres []SubGenre
}

// Slug returns the URL-safe form of the category name.
func (c Category) Slug() string { return Slugify(c.Name) }

// Classification is a (Category, SubGenre) pair. The zero value means
// "not classified".
type Classification struct {
	Category string `json:"category"`
	SubGenre string `json:"sub_genre"`
}

// IsZero reports whether neither field is set.
func (c Classification) IsZero() bool { return c.Category == "" && c.SubGenre == "" }

// Complete reports whether both fields are set.
func (c Classification) Complete() bool { return c.Category != "" && c.SubGenre != "" }

// Aliases include Open Library subject terms so external subjects match too.
// Declaration order is significant: earlier entries win exact-match ties.
var categories = []Category{
	{
		Name: Fiction,
		SubGenres: []SubGenre{
			{Name: "Fantasy", Aliases: []string{
				"fantasy", "fantasy fiction", "epic fantasy", "urban fantasy", "high fantasy",
				"dark fantasy", "sword and sorcery", "mythic fiction", "fantasy, epic",
				"fiction, fantasy, epic", "fiction, fantasy, general", "fantastic fiction",
				"english fantasy fiction", "magic", "wizards", "dragons",
			}},
			{Name: "Science Fiction", Aliases: []string{
				"science fiction", "sci-fi", "sf", "scifi", "speculative fiction",
				"cyberpunk", "space opera", "dystopian", "post-apocalyptic",
				"fiction, science fiction", "science fiction, general",
			}},
			{Name: "Mystery & Thriller", Aliases: []string{
				"mystery", "thriller", "suspense", "crime", "detective",
				"crime fiction", "noir", "psychological thriller", "legal thriller",
				"mystery and detective stories", "crime & mystery", "thrillers",
				"detective and mystery stories", "murder", "mystery fiction",
			}},
			{Name: "Horror", Aliases: []string{
				"horror", "gothic", "supernatural", "dark fiction", "ghost stories",
				"horror fiction", "horror tales", "occult fiction",
			}},
			{Name: "Romance", Aliases: []string{
				"romance", "romantic fiction", "love story", "romantic suspense",
				"historical romance", "contemporary romance", "love", "romance fiction",
			}},
			{Name: "Historical Fiction", Aliases: []string{
				"historical fiction", "historical novel", "historical",
				"fiction, historical", "history fiction",
			}},
			{Name: "Literary", Aliases: []string{
				"literary fiction", "literary", "classic", "classics", "classic fiction",
				"literature", "fiction in english", "english fiction", "english literature",
				"american fiction", "american literature", "contemporary fiction",
				"modern fiction", "novel", "novels", "general fiction", "fiction",
			}},
			{Name: "Humor", Aliases: []string{
				"humor", "humour", "comedy", "satire", "humorous fiction",
				"wit and humor", "humorous stories",
			}},
			{Name: "Adventure", Aliases: []string{
				"adventure", "action", "action adventure", "adventure fiction",
				"adventure stories", "sea stories", "war stories",
			}},
			{Name: "Short Stories", Aliases: []string{
				"short stories", "short fiction", "anthology", "collected stories",
				"short stories, english", "fiction, anthologies",
			}},
			{Name: "Drama", Aliases: []string{
				"drama", "plays", "family saga", "domestic fiction", "theatrical",
			}},
			{Name: "Poetry", Aliases: []string{
				"poetry", "poems", "verse", "poetic works", "english poetry",
				"american poetry",
			}},
			{Name: "Young Adult Fiction", Aliases: []string{
				"young adult fiction", "ya fiction", "teen fiction", "teenage",
				"coming of age", "juvenile fiction", "children's fiction",
			}},
			{Name: Other},
		},
	},
	{
		Name: NonFiction,
		SubGenres: []SubGenre{
			{Name: "Biography & Memoir", Aliases: []string{
				"biography", "autobiography", "memoir", "memoirs", "biographical",
				"life story", "personal narrative", "biography & autobiography",
				"biographies", "personal memoirs",
			}},
			{Name: "History", Aliases: []string{
				"history", "historical", "ancient history", "world history",
				"military history", "cultural history", "medieval history", "modern history",
				"ancient civilization", "archaeology", "world war", "wars",
				"history, general", "united states history", "european history",
				"indian history", "asian history",
			}},
			{Name: "Science & Technology", Aliases: []string{
				"science", "physics", "chemistry", "biology", "astronomy",
				"natural science", "earth science", "environmental science",
				"popular science", "mathematics", "math", "maths",
				"technology", "computer science", "programming", "engineering",
				"artificial intelligence", "software", "electronics", "computers",
				"technology & engineering", "science, general",
			}},
			{Name: "Business & Finance", Aliases: []string{
				"business", "economics", "finance", "management", "entrepreneurship",
				"investing", "marketing", "leadership", "money", "business & economics",
				"success in business", "business success", "commerce",
			}},
			{Name: "Self-Help", Aliases: []string{
				"self-help", "self help", "personal development", "motivation",
				"self improvement", "self-improvement", "productivity", "success", "habits",
				"self-actualization", "self-culture", "conduct of life", "inspiration",
			}},
			{Name: "Philosophy & Religion", Aliases: []string{
				"philosophy", "philosophical", "ethics", "logic", "metaphysics",
				"existentialism", "stoicism", "religion", "spirituality", "spiritual",
				"theology", "mysticism", "meditation", "yoga", "mythology",
				"vedanta", "hinduism", "buddhism", "islam", "christianity",
				"religious aspects", "philosophy, general",
			}},
			{Name: "Psychology", Aliases: []string{
				"psychology", "psychiatry", "mental health", "cognitive science",
				"behavioral science", "psychoanalysis", "neuroscience",
				"psychology, general", "psychological aspects",
			}},
			{Name: "Politics & Society", Aliases: []string{
				"politics", "political science", "sociology", "social science",
				"current affairs", "government", "international relations",
				"anthropology", "cultural studies", "social life and customs",
				"politics and government",
			}},
			{Name: "Arts & Entertainment", Aliases: []string{
				"art", "music", "fine arts", "art history", "photography",
				"architecture", "design", "film", "cinema", "performing arts",
				"art instruction", "graphic design", "dance", "fashion",
				"painting", "music theory",
			}},
			{Name: "Health & Wellness", Aliases: []string{
				"health", "fitness", "medicine", "nutrition", "diet",
				"exercise", "wellness", "medical", "cooking", "cookbooks",
				"mental health", "health & fitness",
			}},
			{Name: "Travel & Culture", Aliases: []string{
				"travel", "geography", "culture", "tourism", "exploration",
				"travel writing", "voyages and travels",
			}},
			{Name: "Essays & Criticism", Aliases: []string{
				"essays", "essay", "collected essays", "literary criticism",
				"criticism", "literary essays", "book reviews",
			}},
			{Name: Other},
		},
	},
	{
		Name: Children,
		SubGenres: []SubGenre{
			{Name: "Picture Books", Aliases: []string{
				"picture book", "picture books", "baby books", "infancy",
				"bedtime", "bedtime stories", "stories in rhyme",
			}},
			{Name: "Stories", Aliases: []string{
				"children's fiction", "children's stories", "children's literature",
				"fairy tales", "fables", "juvenile literature", "kids books",
			}},
			{Name: "Educational", Aliases: []string{
				"children's educational", "educational", "learning",
				"young readers nonfiction", "children's nonfiction", "juvenile nonfiction",
			}},
			{Name: "Young Adult", Aliases: []string{
				"young adult", "ya", "teen", "teenage", "young adult fiction",
				"coming of age",
			}},
			{Name: Other},
		},
	},
	{
		Name: Comics,
		SubGenres: []SubGenre{
			{Name: "Graphic Novels", Aliases: []string{
				"graphic novel", "graphic novels", "comics", "comic book",
				"sequential art", "comic books, strips, etc",
			}},
			{Name: "Manga", Aliases: []string{
				"manga", "anime", "japanese comics", "manhwa", "manhua",
			}},
			{Name: "Indian Comics", Aliases: []string{
				"indian comics", "amar chitra katha", "panchatantra",
				"indian mythology comics",
			}},
			{Name: "Superheroes", Aliases: []string{
				"superheroes", "superhero comics", "marvel", "dc comics",
			}},
			{Name: Other},
		},
	},
	{
		Name: Reference,
		SubGenres: []SubGenre{
			{Name: "Encyclopedias", Aliases: []string{
				"encyclopedia", "encyclopaedia", "encyclopedias", "dictionaries",
			}},
			{Name: "Textbooks", Aliases: []string{
				"textbook", "textbooks", "academic", "coursebook", "study guide",
				"educational material", "course material",
			}},
			{Name: "Guides & Handbooks", Aliases: []string{
				"handbook", "guide", "reference", "manual", "how-to",
				"almanac", "atlas", "dictionary",
			}},
			{Name: Other},
		},
	},
}

// Categories returns a copy of the taxonomy in declaration order.
func Categories() []Category {
	out := make([]Category, len(categories))
	for i, c := range categories {
		subs := make([]SubGenre, len(c.SubGenres))
		for j, s := range c.SubGenres {
			subs[j] = SubGenre{Name: s.Name, Aliases: append([]string(nil), s.Aliases...)}
		}
		out[i] = Category{Name: c.Name, SubGenres: subs}
	}
	return out
}

// CategoryNames returns the category names in declaration order.
func CategoryNames() []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	return names
}

// Tree maps each category to its sub-genre names, including Other.
func Tree() map[string][]string {
	tree := make(map[string][]string, len(categories))
	for _, c := range categories {
		subs := make([]string, len(c.SubGenres))
		for i, s := range c.SubGenres {
			subs[i] = s.Name
		}
		tree[c.Name] = subs
	}
	return tree
}

// HasCategory reports whether name is a category.
func HasCategory(name string) bool {
	_, ok := findCategory(name)
	return ok
}

// Valid reports whether subGenre belongs to category. An empty subGenre
// only checks the category.
func Valid(category, subGenre string) bool {
	c, ok := findCategory(category)
	if !ok {
		return false
	}
	if subGenre == "" {
		return true
	}
	for _, s := range c.SubGenres {
		if s.Name == subGenre {
			return true
		}
	}
	return false
}

// CategoryOf returns the category owning subGenre. Other is ambiguous and
// never resolves.
func CategoryOf(subGenre string) (string, bool) {
	if subGenre == Other {
		return "", false
	}
	for _, c := range categories {
		for _, s := range c.SubGenres {
			if s.Name == subGenre {
				return c.Name, true
			}
		}
	}
	return "", false
}

func findCategory(name string) (Category, bool) {
	for _, c := range categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}
