// Package actions is the catalog of transformations offered by the action
// picker, keyed by content kind and action ID.
package actions

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"kairo/src/content"
)

// ID identifies an action across content kinds.
type ID string

const (
	FixGrammar   ID = "fix-grammar"
	MakeConcise  ID = "make-concise"
	Professional ID = "professional"
	Summarize    ID = "summarize"
	Explain      ID = "explain"
	Translate    ID = "translate"
	Expand       ID = "expand"
	Simplify     ID = "simplify"
	KeyPoints    ID = "key-points"
	Describe     ID = "describe"
	ExtractText  ID = "extract-text"

	// Custom carries no instruction; the UI collects freeform text instead.
	Custom ID = "custom"
)

// languagePlaceholder is replaced by the configured target language.
const languagePlaceholder = "{language}"

var ErrUnknownAction = errors.New("unknown action")

// Action is one entry of the picker.
type Action struct {
	ID          ID
	Label       string
	Icon        string
	Instruction string
}

// Catalog maps ContentKind × ID to an instruction.
type Catalog struct {
	entries      map[content.Kind]map[ID]Action
	order        map[content.Kind][]ID
	kindSpecific map[ID]content.Kind
	language     string
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		entries:      make(map[content.Kind]map[ID]Action),
		order:        make(map[content.Kind][]ID),
		kindSpecific: make(map[ID]content.Kind),
		language:     "English",
	}
}

// Add registers an action for a content kind. Re-adding replaces the entry
// but keeps its position.
func (c *Catalog) Add(kind content.Kind, a Action) *Catalog {
	m, ok := c.entries[kind]
	if !ok {
		m = make(map[ID]Action)
		c.entries[kind] = m
	}
	if _, exists := m[a.ID]; !exists {
		c.order[kind] = append(c.order[kind], a.ID)
	}
	m[a.ID] = a
	return c
}

// OnlyFor marks an action as intentionally available for a single kind.
func (c *Catalog) OnlyFor(kind content.Kind, a Action) *Catalog {
	c.kindSpecific[a.ID] = kind
	return c.Add(kind, a)
}

// SetLanguage sets the target language substituted into translate prompts.
func (c *Catalog) SetLanguage(lang string) {
	if lang = strings.TrimSpace(lang); lang != "" {
		c.language = lang
	}
}

// List returns the actions for a kind in registration order.
func (c *Catalog) List(kind content.Kind) []Action {
	ids := c.order[kind]
	out := make([]Action, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.render(c.entries[kind][id]))
	}
	return out
}

// Lookup returns the action registered for kind and id.
func (c *Catalog) Lookup(kind content.Kind, id ID) (Action, bool) {
	a, ok := c.entries[kind][id]
	if !ok {
		return Action{}, false
	}
	return c.render(a), true
}

// Instruction resolves the instruction for kind and id. It returns nil for
// Custom, whose text is supplied by the user.
func (c *Catalog) Instruction(kind content.Kind, id ID) (*string, error) {
	a, ok := c.Lookup(kind, id)
	if !ok {
		return nil, fmt.Errorf("%w: %s for %s content", ErrUnknownAction, id, kind)
	}
	if id == Custom {
		return nil, nil
	}
	instr := a.Instruction
	return &instr, nil
}

func (c *Catalog) render(a Action) Action {
	a.Instruction = strings.ReplaceAll(a.Instruction, languagePlaceholder, c.language)
	return a
}

// Validate checks that every action exists for every kind unless it was
// registered with OnlyFor, that Custom exists everywhere without an
// instruction, and that all other actions carry one.
func (c *Catalog) Validate() error {
	kinds := []content.Kind{content.KindText, content.KindImage}
	seen := make(map[ID]struct{})
	for _, k := range kinds {
		for id := range c.entries[k] {
			seen[id] = struct{}{}
		}
	}

	var problems []string
	for _, k := range kinds {
		if _, ok := c.entries[k][Custom]; !ok {
			problems = append(problems, fmt.Sprintf("%s: missing %s", k, Custom))
		}
	}
	for id := range seen {
		only, specific := c.kindSpecific[id]
		for _, k := range kinds {
			a, ok := c.entries[k][id]
			switch {
			case !ok && !specific:
				problems = append(problems, fmt.Sprintf("%s: missing %s", k, id))
			case ok && specific && only != k:
				problems = append(problems, fmt.Sprintf("%s: %s is marked %s-only", k, id, only))
			case ok && id == Custom && a.Instruction != "":
				problems = append(problems, fmt.Sprintf("%s: %s must not carry an instruction", k, id))
			case ok && id != Custom && strings.TrimSpace(a.Instruction) == "":
				problems = append(problems, fmt.Sprintf("%s: %s has an empty instruction", k, id))
			}
		}
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return fmt.Errorf("invalid action catalog: %s", strings.Join(problems, "; "))
}

// DisplayName is the heading shown above a result.
func DisplayName(id ID) string {
	switch id {
	case FixGrammar:
		return "Grammar Fixed"
	case MakeConcise:
		return "Made Concise"
	case Professional:
		return "Professional Version"
	case Summarize:
		return "Summary"
	case Explain:
		return "Explanation"
	case Translate:
		return "Translation"
	case Expand:
		return "Expanded Version"
	case Simplify:
		return "Simplified Version"
	case KeyPoints:
		return "Key Points"
	case Describe:
		return "Description"
	case ExtractText:
		return "Extracted Text"
	case Custom:
		return "Custom Response"
	default:
		return string(id)
	}
}
