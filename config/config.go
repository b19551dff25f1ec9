package config

import "github.com/namsral/flag"

// Config carries everything the front ends need to build an engine. Values
// come from flags or the matching MALLARD_-prefixed environment variables.
type Config struct {
	TTSizeMB      int
	BookPath      string
	BookPlies     int
	BookSeed      uint64
	TablebasePath string
	TablebaseMen  int
	MaxDepth      int
	LogLevel      string
}

func (c *Config) Load(args []string) error {
	fs := flag.NewFlagSetWithEnvPrefix("mallard", "MALLARD", flag.ContinueOnError)
	fs.IntVar(&c.TTSizeMB, "tt-size-mb", 64, "transposition table size in megabytes")
	fs.StringVar(&c.BookPath, "book-path", "", "path to a Polyglot opening book file")
	fs.IntVar(&c.BookPlies, "book-plies", 16, "consult the book for this many game plies")
	fs.Uint64Var(&c.BookSeed, "book-seed", 0, "seed for book move selection; 0 keeps it random")
	fs.StringVar(&c.TablebasePath, "tablebase-path", "", "directory holding endgame table files")
	fs.IntVar(&c.TablebaseMen, "tablebase-men", 6, "probe tables at or below this many pieces")
	fs.IntVar(&c.MaxDepth, "max-depth", 100, "cap on iterative deepening depth")
	fs.StringVar(&c.LogLevel, "log-level", "info", "zerolog level: debug, info, warn, error")
	return fs.Parse(args)
}
