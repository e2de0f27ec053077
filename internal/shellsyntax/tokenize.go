package shellsyntax

import "strings"

// ParsedCommand is the result of tokenizing one pipeline segment: a
// command name plus its positional arguments.
type ParsedCommand struct {
	Name string
	Args []string
}

// Tokenize splits segment into whitespace-delimited tokens honoring single
// and double quotes: quotes group whitespace and are not preserved in the
// resulting tokens. On unterminated quotes it leniently degrades to a plain
// whitespace split rather than failing.
func Tokenize(segment string) ParsedCommand {
	tokens, ok := tokenizeQuoted(segment)
	if !ok {
		tokens = strings.Fields(segment)
	}
	if len(tokens) == 0 {
		return ParsedCommand{}
	}
	return ParsedCommand{Name: tokens[0], Args: tokens[1:]}
}

func tokenizeQuoted(segment string) ([]string, bool) {
	var tokens []string
	var current strings.Builder
	hasToken := false
	inSingle, inDouble := false, false

	flush := func() {
		if hasToken {
			tokens = append(tokens, current.String())
			current.Reset()
			hasToken = false
		}
	}

	for _, r := range segment {
		switch {
		case r == '\'' && !inDouble:
			inSingle = !inSingle
			hasToken = true
		case r == '"' && !inSingle:
			inDouble = !inDouble
			hasToken = true
		case isSpace(r) && !inSingle && !inDouble:
			flush()
		default:
			current.WriteRune(r)
			hasToken = true
		}
	}
	flush()

	if inSingle || inDouble {
		return nil, false
	}
	return tokens, true
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// Parse expands line against env, splits it into pipeline segments, then
// tokenizes each segment — always in that order, so quoted "$VAR" text
// behaves the same in every stage.
func Parse(line string, env map[string]string) []ParsedCommand {
	expanded := Expand(line, env)
	segments := SplitPipeline(expanded)
	commands := make([]ParsedCommand, len(segments))
	for i, seg := range segments {
		commands[i] = Tokenize(seg)
	}
	return commands
}

// closedVocabulary is the full shell command vocabulary, used only as a
// soft hint by the REPL.
var closedVocabulary = map[string]bool{
	"cd": true, "ls": true, "pwd": true, "cat": true, "head": true,
	"tail": true, "echo": true, "grep": true, "find": true, "tree": true,
	"paths": true, "star": true, "unstar": true, "pin": true, "unpin": true,
	"archive": true, "unarchive": true, "title": true, "ln": true, "cp": true,
	"mv": true, "rm": true, "mkdir": true, "help": true, "exit": true,
	"quit": true,
}

// IsShellCommand reports whether line's first token names a recognized
// shell command, used only to help the REPL disambiguate shell input from
// chat input.
func IsShellCommand(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	return closedVocabulary[strings.ToLower(fields[0])]
}
