// Package intent resolves free-form textual commands into validated combat
// actions.
//
// The parser is the trust boundary for player input: emitted actions carry
// only enumerated literals, validated numbers, and actor ids taken from the
// session roster, never substrings of the raw input.
package intent

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/industry-digital/flux-engine/internal/game/actor"
	"github.com/industry-digital/flux-engine/internal/game/combat"
)

// Command tags one validated action. STRIKE is deliberately absent: a
// primitive strike travels as ATTACK with Primitive set, which keeps the
// wire format stable.
type Command string

const (
	CommandTarget  Command = "TARGET"
	CommandAttack  Command = "ATTACK"
	CommandDefend  Command = "DEFEND"
	CommandAdvance Command = "ADVANCE"
	CommandRetreat Command = "RETREAT"
	// CommandCleave is produced by the tactical planner only; the textual
	// grammar has no cleave verb.
	CommandCleave Command = "CLEAVE"
)

// Action is one validated, executable command.
type Action struct {
	Command Command
	// TargetID is a validated actor URN from the roster, or "".
	TargetID string
	// Mode and Value drive movement actions. Value is combat.AllRemainingAP
	// when the input gave no amount.
	Mode  combat.MoveMode
	Value float64
	// Primitive marks a strike dispatched through the ATTACK tag.
	Primitive bool
}

// Candidate is one resolvable target.
type Candidate struct {
	ID   string
	Name string
}

// maxAPArgument bounds the "ap N" argument.
const maxAPArgument = 10.0

// verbSpec maps a canonical verb to its command shape.
type verbSpec struct {
	canonical string
	command   Command
	primitive bool
	synonyms  []string
}

var verbs = []verbSpec{
	{canonical: "attack", command: CommandAttack, synonyms: []string{"atk", "att"}},
	{canonical: "strike", command: CommandAttack, primitive: true, synonyms: []string{"str", "hit", "swing"}},
	{canonical: "defend", command: CommandDefend, synonyms: []string{"def", "block", "guard"}},
	{canonical: "target", command: CommandTarget, synonyms: []string{"tar"}},
	{canonical: "advance", command: CommandAdvance, synonyms: []string{"adv", "move", "forward"}},
	{canonical: "retreat", command: CommandRetreat, synonyms: []string{"ret", "back", "flee"}},
}

// Parser turns intent strings into validated actions.
type Parser struct {
	battlefieldLength int
}

// NewParser creates a parser bound to the battlefield length, which caps
// distance arguments.
//
// Precondition: battlefieldLength > 0.
func NewParser(battlefieldLength int) *Parser {
	return &Parser{battlefieldLength: battlefieldLength}
}

// Parse resolves one command line against the roster.
//
// Postcondition: every returned Action contains only enumerated literals,
// validated finite numbers, and roster actor ids.
func (p *Parser) Parse(input string, roster []Candidate) ([]Action, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(input)))
	if len(fields) == 0 {
		return nil, combat.NewError(combat.CodeIntentParse, "", "empty command")
	}

	spec, ok := resolveVerb(fields[0])
	if !ok {
		return nil, combat.NewError(combat.CodeIntentParse, "", "unknown verb")
	}
	args := fields[1:]

	switch spec.command {
	case CommandDefend:
		if len(args) != 0 {
			return nil, combat.NewError(combat.CodeIntentParse, "", "defend takes no arguments")
		}
		return []Action{{Command: CommandDefend}}, nil

	case CommandTarget:
		id, err := p.resolveTarget(args, roster)
		if err != nil {
			return nil, err
		}
		if id == "" {
			return nil, combat.NewError(combat.CodeIntentParse, "", "target requires a name")
		}
		return []Action{{Command: CommandTarget, TargetID: id}}, nil

	case CommandAttack:
		id := ""
		if len(args) > 0 {
			var err error
			id, err = p.resolveTarget(args, roster)
			if err != nil {
				return nil, err
			}
		}
		return []Action{{Command: spec.command, TargetID: id, Primitive: spec.primitive}}, nil

	case CommandAdvance, CommandRetreat:
		return p.parseMovement(spec.command, args, roster)
	}

	return nil, combat.NewError(combat.CodeIntentParse, "", "unknown verb")
}

// resolveVerb matches a token by exact canonical spelling, 3-letter prefix
// of the canonical spelling, or listed synonym.
func resolveVerb(token string) (verbSpec, bool) {
	for _, v := range verbs {
		if token == v.canonical || token == v.canonical[:3] {
			return v, true
		}
		for _, syn := range v.synonyms {
			if token == syn {
				return v, true
			}
		}
	}
	return verbSpec{}, false
}

// parseMovement handles advance/retreat argument grammars.
func (p *Parser) parseMovement(cmd Command, args []string, roster []Candidate) ([]Action, error) {
	action := Action{Command: cmd, Mode: combat.MoveByAP, Value: combat.AllRemainingAP}

	i := 0
	for i < len(args) {
		tok := args[i]
		switch {
		case tok == "distance":
			if i+1 >= len(args) {
				return nil, combat.NewError(combat.CodeIntentParse, "", "distance requires a number")
			}
			v, err := p.parseDistance(args[i+1])
			if err != nil {
				return nil, err
			}
			action.Mode, action.Value = combat.MoveByDistance, v
			i += 2

		case tok == "ap":
			if i+1 >= len(args) {
				return nil, combat.NewError(combat.CodeIntentParse, "", "ap requires a number")
			}
			v, err := parseAP(args[i+1])
			if err != nil {
				return nil, err
			}
			action.Mode, action.Value = combat.MoveByAP, v
			i += 2

		case tok == "toward" || tok == "to":
			id, err := p.resolveTarget(args[i+1:], roster)
			if err != nil {
				return nil, err
			}
			if id == "" {
				return nil, combat.NewError(combat.CodeIntentParse, "", "%s requires a name", tok)
			}
			action.TargetID = id
			i = len(args)

		case tok == "from" || tok == "away":
			rest := args[i+1:]
			if tok == "away" {
				if len(rest) == 0 || rest[0] != "from" {
					return nil, combat.NewError(combat.CodeIntentParse, "", "away requires 'from'")
				}
				rest = rest[1:]
			}
			id, err := p.resolveTarget(rest, roster)
			if err != nil {
				return nil, err
			}
			if id == "" {
				return nil, combat.NewError(combat.CodeIntentParse, "", "from requires a name")
			}
			action.TargetID = id
			i = len(args)

		case isNumeric(tok):
			// Bare number is shorthand distance.
			v, err := p.parseDistance(tok)
			if err != nil {
				return nil, err
			}
			action.Mode, action.Value = combat.MoveByDistance, v
			i++

		default:
			// A trailing bare name is a movement reference target.
			id, err := p.resolveTarget(args[i:], roster)
			if err != nil {
				return nil, err
			}
			if id == "" {
				return nil, combat.NewError(combat.CodeIntentParse, "", "unrecognized argument")
			}
			action.TargetID = id
			i = len(args)
		}
	}

	return []Action{action}, nil
}

// parseDistance validates a distance argument: finite, > 0, <= battlefield length.
func (p *Parser) parseDistance(tok string) (float64, error) {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, combat.NewError(combat.CodeIntentParse, "", "invalid distance")
	}
	if v <= 0 || v > float64(p.battlefieldLength) || math.Floor(v) <= 0 {
		return 0, combat.NewError(combat.CodeIntentParse, "",
			"distance must be in (0, %d]", p.battlefieldLength)
	}
	return math.Floor(v), nil
}

// parseAP validates an ap argument: finite, > 0, <= 10.
func parseAP(tok string) (float64, error) {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, combat.NewError(combat.CodeIntentParse, "", "invalid ap amount")
	}
	if v <= 0 || v > maxAPArgument {
		return 0, combat.NewError(combat.CodeIntentParse, "",
			"ap must be in (0, %v]", maxAPArgument)
	}
	return v, nil
}

func isNumeric(tok string) bool {
	_, err := strconv.ParseFloat(tok, 64)
	return err == nil
}

// resolveTarget matches the given name tokens against the roster by
// (1) exact case-insensitive name, (2) unique prefix, (3) unique substring.
// The returned id comes from the roster entry, never from the input, and is
// revalidated as an actor URN.
//
// Postcondition: ("", nil) when args is empty; AmbiguousTarget lists every
// matching roster name.
func (p *Parser) resolveTarget(args []string, roster []Candidate) (string, error) {
	if len(args) == 0 {
		return "", nil
	}
	name := strings.ToLower(strings.Join(args, " "))

	var exact, prefix, substring []Candidate
	for _, cand := range roster {
		lower := strings.ToLower(cand.Name)
		switch {
		case lower == name:
			exact = append(exact, cand)
		case strings.HasPrefix(lower, name):
			prefix = append(prefix, cand)
		case strings.Contains(lower, name):
			substring = append(substring, cand)
		}
	}

	pick := func(matches []Candidate) (string, error) {
		if len(matches) > 1 {
			names := make([]string, len(matches))
			for i, m := range matches {
				names[i] = m.Name
			}
			sort.Strings(names)
			return "", combat.NewError(combat.CodeAmbiguousTarget, "",
				"ambiguous target: %s", strings.Join(names, ", "))
		}
		id := matches[0].ID
		if err := actor.ValidateID(id); err != nil {
			return "", combat.NewError(combat.CodeInternalInvariant, "", "roster id: %v", err)
		}
		return id, nil
	}

	switch {
	case len(exact) > 0:
		return pick(exact)
	case len(prefix) > 0:
		return pick(prefix)
	case len(substring) > 0:
		return pick(substring)
	}
	return "", combat.NewError(combat.CodeUnknownActor, "", "no such target")
}
