package runtime

import "strings"

// DefaultReflections is the first/second person substitution table.
// "you" and the verbs agreeing with a pronoun are resolved by position, see Reflector.Reflect.
var DefaultReflections = map[string]string{
	"i":        "you",
	"me":       "you",
	"my":       "your",
	"mine":     "yours",
	"myself":   "yourself",
	"am":       "are",
	"your":     "my",
	"yours":    "mine",
	"yourself": "myself",
}

// objectContext lists words after which "you" is an object and reflects to "me".
var objectContext = map[string]bool{
	"to": true, "with": true, "for": true, "about": true, "at": true, "of": true,
	"from": true, "by": true, "and": true, "or": true, "like": true, "than": true,
	"love": true, "hate": true, "need": true, "want": true, "see": true,
	"know": true, "tell": true, "help": true, "trust": true, "miss": true,
}

// Reflector rewrites pronouns inside captured fragments.
type Reflector struct {
	table map[string]string
}

// NewReflector builds a reflector. A nil table selects DefaultReflections.
func NewReflector(table map[string]string) *Reflector {
	if table == nil {
		table = DefaultReflections
	}
	r := &Reflector{table: make(map[string]string, len(table))}
	for k, v := range table {
		r.table[strings.ToLower(k)] = strings.ToLower(v)
	}
	return r
}

// Reflect swaps first and second person word by word, keeping order and
// every other word unchanged.
func (r *Reflector) Reflect(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		if sub, ok := r.table[w]; ok {
			out[i] = sub
			continue
		}
		switch w {
		case "you":
			out[i] = r.reflectYou(words, i)
		case "are":
			// "you are" and "are you" take "am"; "they are" stays.
			out[i] = agree(words, i, "you", "am")
		case "were":
			out[i] = agree(words, i, "you", "was")
		case "was":
			out[i] = agree(words, i, "i", "were")
		default:
			out[i] = w
		}
	}
	return out
}

// agree returns sub when the word at i sits next to pronoun, else the word itself.
func agree(words []string, i int, pronoun, sub string) string {
	if (i > 0 && words[i-1] == pronoun) || (i+1 < len(words) && words[i+1] == pronoun) {
		return sub
	}
	return words[i]
}

// ReflectString is a convenience wrapper over Reflect for space separated fragments.
func (r *Reflector) ReflectString(fragment string) string {
	return strings.Join(r.Reflect(strings.Fields(fragment)), " ")
}

func (r *Reflector) reflectYou(words []string, i int) string {
	if i == 0 {
		return "i"
	}
	if objectContext[words[i-1]] || i == len(words)-1 {
		return "me"
	}
	return "i"
}
