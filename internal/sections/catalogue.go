// Package sections defines the credit-memo section catalogue: the named
// sections a memo must contain, the synthesis prompt for each, and the
// retrieval sub-queries that gather its evidence. The built-in catalogue
// can be overridden by a TOML file and hot-reloaded while running.
package sections

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// SubQuery is one retrieval probe run while gathering a section's evidence.
type SubQuery struct {
	// Text is the semantic query text.
	Text string `toml:"text"`

	// K bounds the results for this probe. Zero means the default.
	K int `toml:"k"`
}

// Definition describes one memo section.
type Definition struct {
	// Name is the section heading, e.g. "Financial Analysis".
	Name string `toml:"name"`

	// Prompt instructs the synthesis model for this section.
	Prompt string `toml:"prompt"`

	// SubQueries gather the section's evidence. Results across
	// sub-queries are deduplicated by chunk ID before synthesis.
	SubQueries []SubQuery `toml:"queries"`
}

// Catalogue holds the ordered section definitions. Safe for concurrent
// readers while a reload replaces the contents.
type Catalogue struct {
	mu     sync.RWMutex
	defs   []Definition
	byName map[string]Definition
}

// catalogueFile is the TOML override file layout.
type catalogueFile struct {
	Sections []Definition `toml:"sections"`
}

// Default returns the built-in catalogue.
func Default() *Catalogue {
	c := &Catalogue{}
	c.replace(defaultDefinitions())
	return c
}

// Load reads a catalogue override from a TOML file. A missing file
// returns the built-in catalogue; a malformed one is an error.
func Load(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading section catalogue: %w", err)
	}

	defs, err := parse(data)
	if err != nil {
		return nil, err
	}

	c := &Catalogue{}
	c.replace(defs)
	return c, nil
}

// parse decodes and validates a TOML catalogue.
func parse(data []byte) ([]Definition, error) {
	var f catalogueFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing section catalogue: %w", err)
	}
	if len(f.Sections) == 0 {
		return nil, fmt.Errorf("section catalogue defines no sections")
	}
	for _, def := range f.Sections {
		if strings.TrimSpace(def.Name) == "" {
			return nil, fmt.Errorf("section catalogue: section with empty name")
		}
		if len(def.SubQueries) == 0 {
			return nil, fmt.Errorf("section catalogue: section %q has no queries", def.Name)
		}
	}
	return f.Sections, nil
}

// replace swaps in a new definition set.
func (c *Catalogue) replace(defs []Definition) {
	byName := make(map[string]Definition, len(defs))
	for _, def := range defs {
		byName[def.Name] = def
	}

	c.mu.Lock()
	c.defs = defs
	c.byName = byName
	c.mu.Unlock()
}

// Sections returns the definitions in catalogue order.
func (c *Catalogue) Sections() []Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Names returns the section names in catalogue order.
func (c *Catalogue) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.defs))
	for i, def := range c.defs {
		names[i] = def.Name
	}
	return names
}

// Lookup returns the named section definition and whether it exists.
func (c *Catalogue) Lookup(name string) (Definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	def, ok := c.byName[name]
	return def, ok
}

// defaultDefinitions is the built-in credit-memo catalogue.
func defaultDefinitions() []Definition {
	year := time.Now().Year()

	return []Definition{
		{
			Name: "Borrower, Management, and Ownership",
			Prompt: "Write the 'Borrower, Management, and Ownership' section of the credit memo. " +
				"Cover the company background, the names of directors, an overview of the industry, " +
				"the relationship with the bank (prior loans, payment history), and share ownership " +
				"including any numerical share information present. " +
				"Include as many facts as you can from the provided context. " +
				"Do not include anything that is not present in the context.",
			SubQueries: []SubQuery{
				{Text: "Provide a summary of the company, including its history, core business operations, and what products or services it offers.", K: 3},
				{Text: "Describe the company's management team and board of directors, including the organizational structure.", K: 3},
				{Text: "Company's relationship history with the bank, including prior loans.", K: 3},
				{Text: "Who are the shareholders of the company, and how are shares distributed among them?", K: 3},
			},
		},
		{
			Name: "Financial Analysis",
			Prompt: "Write the 'Financial Analysis' section of the credit memo. " +
				"Cover market trends and comparison to industry benchmarks, cash flow projections " +
				"and analysis, and the company's key financial highlights in recent years. " +
				"Include as many facts as you can from the provided context. " +
				"Do not include anything that is not present in the context.",
			SubQueries: []SubQuery{
				{Text: fmt.Sprintf("What were the company's key financial highlights in %d and %d?", year-2, year-1), K: 3},
				{Text: "Cash flow projections and analysis", K: 3},
				{Text: "Market trends and comparison to industry benchmarks", K: 3},
			},
		},
		{
			Name: "Risk Assessment",
			Prompt: "Write the 'Risk Assessment' section of the credit memo by identifying " +
				"the risks faced by the company. " +
				"Do not include anything that is not present in the context.",
			SubQueries: []SubQuery{
				{Text: "Risks faced by the business", K: 5},
			},
		},
	}
}
