package syntax

// Rule pairs a TokenKind with the Pattern that recognizes it. Rules are
// evaluated in registration order (spec §4.G), which also decides tie-break
// priority when two rules match the same length.
type Rule struct {
	Kind    TokenKind
	Pattern Pattern
}

// Syntax is one language's ordered rule set.
type Syntax struct {
	extensionGlob string
	rules         []Rule
}

// New returns an empty Syntax matching no file extensions and no rules
// (parsing with it yields a single Text token per line, per spec §4.G).
func New() *Syntax {
	return &Syntax{}
}

// SetExtensionGlob records the glob pattern (as matched by
// github.com/tidwall/match) used to associate this syntax with file paths.
func (s *Syntax) SetExtensionGlob(glob string) { s.extensionGlob = glob }

// ExtensionGlob returns the glob set by SetExtensionGlob.
func (s *Syntax) ExtensionGlob() string { return s.extensionGlob }

// AddRule appends a rule to the syntax's registration-ordered rule set.
func (s *Syntax) AddRule(kind TokenKind, pattern Pattern) {
	s.rules = append(s.rules, Rule{Kind: kind, Pattern: pattern})
}

func isASCIIWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

func isASCIIAlphanumeric(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isCharBoundary(line string, index int) bool {
	if index <= 0 || index >= len(line) {
		return true
	}
	return line[index]&0xC0 != 0x80
}

// ParseLine tokenizes one line, consuming previousLineKind as carry from
// the prior line, and returns the tokens produced plus the LineState to
// carry into the next line. It implements spec §4.G exactly.
func (s *Syntax) ParseLine(line string, previousLineKind LineState) ([]Token, LineState) {
	var tokens []Token

	if len(s.rules) == 0 {
		tokens = append(tokens, Token{Kind: TokenText, From: 0, To: len(line)})
		return tokens, Finished
	}

	lineLen := len(line)
	lineIndex := 0

	if previousLineKind.Kind == LineUnfinished {
		ruleIdx := previousLineKind.RuleIndex
		rule := s.rules[ruleIdx]
		switch res := rule.Pattern.MatchesWithState(line, previousLineKind.PatternSt); res.Kind {
		case MatchOk:
			tokens = append(tokens, Token{Kind: rule.Kind, From: 0, To: res.Len})
			lineIndex += res.Len
		case MatchErr:
			// no carry token; resume fresh matching at 0
		case MatchPending:
			tokens = append(tokens, Token{Kind: rule.Kind, From: 0, To: lineLen})
			return tokens, Unfinished(ruleIdx, res.State)
		}
	}

	for lineIndex < lineLen {
		lineSlice := line[lineIndex:]
		whitespaceLen := 0
		for whitespaceLen < len(lineSlice) && isASCIIWhitespace(lineSlice[whitespaceLen]) {
			whitespaceLen++
		}
		lineSlice = lineSlice[whitespaceLen:]

		bestIndex := 0
		maxLen := 0
		for i, rule := range s.rules {
			switch res := rule.Pattern.Matches(lineSlice); res.Kind {
			case MatchOk:
				if res.Len > maxLen {
					maxLen = res.Len
					bestIndex = i
				}
			case MatchErr:
				// no match, try next rule
			case MatchPending:
				tokens = append(tokens, Token{Kind: rule.Kind, From: lineIndex, To: lineLen})
				return tokens, Unfinished(i, res.State)
			}
		}

		kind := s.rules[bestIndex].Kind
		if maxLen == 0 {
			kind = TokenText
			run := 0
			for run < len(lineSlice) && isASCIIAlphanumeric(lineSlice[run]) {
				run++
			}
			if run == 0 {
				run = 1
			}
			maxLen = run
		}

		maxLen += whitespaceLen

		from := lineIndex
		lineIndex += maxLen
		if lineIndex > lineLen {
			lineIndex = lineLen
		}
		for !isCharBoundary(line, lineIndex) {
			lineIndex++
		}

		tokens = append(tokens, Token{Kind: kind, From: from, To: lineIndex})
	}

	return tokens, Finished
}
