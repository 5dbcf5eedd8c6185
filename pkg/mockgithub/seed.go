package mockgithub

// Seed populates s with the demo repositories served by apps/mock-github:
//
//	acme/widgets  default branch main, text files plus a binary logo
//	acme/legacy   only a master branch, default branch master
func Seed(s *Store) {
	s.AddRepo("acme", "widgets", "main")
	for _, f := range widgetsFiles {
		s.SetFile("acme", "widgets", "main", f.path, []byte(f.content))
	}

	s.AddRepo("acme", "legacy", "master")
	for _, f := range legacyFiles {
		s.SetFile("acme", "legacy", "master", f.path, []byte(f.content))
	}
}

type seedFile struct {
	path    string
	content string
}

var widgetsFiles = []seedFile{
	{"README.md", "# widgets\n\nA tiny demo repository.\n"},
	{"src/main.py", "def main():\n    print(\"hello from widgets\")\n\n\nif __name__ == \"__main__\":\n    main()\n"},
	{"src/widgets/__init__.py", "from .core import Widget\n"},
	{"src/widgets/core.py", "class Widget:\n    def __init__(self, name):\n        self.name = name\n"},
	{"assets/logo.png", "\x89PNG\r\n\x1a\n"},
	{"docs/guide.md", "## Usage\n\nRun `python src/main.py`.\n"},
}

var legacyFiles = []seedFile{
	{"README", "legacy project, still on master\n"},
	{"Makefile", "all:\n\t@echo legacy\n"},
}
