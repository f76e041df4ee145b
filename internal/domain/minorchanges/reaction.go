package minorchanges

import (
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/turtacn/minorchanges/pkg/chem"
	"github.com/turtacn/minorchanges/pkg/errors"
)

// Reaction is a named query plus the edit script applied at each match.
type Reaction struct {
	Name  string
	Query *chem.Query
	Edits []chem.Edit
}

// ReactionLibrary is a read-only, ordered set of reactions.
type ReactionLibrary struct {
	Reactions []*Reaction
}

// Len is the number of reactions.
func (l *ReactionLibrary) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Reactions)
}

type reactionFile struct {
	Reactions []reactionDoc `yaml:"reactions"`
}

type reactionDoc struct {
	Name  string    `yaml:"name"`
	Query string    `yaml:"query"`
	Edits []editDoc `yaml:"edits"`
}

type editDoc struct {
	Kind    string `yaml:"kind"`
	Atom    int    `yaml:"atom"`
	Atom2   int    `yaml:"atom2"`
	Element string `yaml:"element"`
	Charge  int    `yaml:"charge"`
	Order   string `yaml:"order"`
}

var bondOrderNames = map[string]chem.BondOrder{
	"":       0,
	"single": chem.Single,
	"double": chem.Double,
	"triple": chem.Triple,
}

// LoadReactions parses a YAML reaction library:
//
//	reactions:
//	  - name: acid_to_amide
//	    query: "C(=O)[OH]"
//	    edits:
//	      - {kind: change_element, atom: 2, element: N}
func LoadReactions(r io.Reader) (*ReactionLibrary, error) {
	var doc reactionFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, errors.CodeReactionInvalid, "decoding reaction library")
	}
	lib := &ReactionLibrary{}
	for i, rd := range doc.Reactions {
		rx, err := buildReaction(rd)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeUnknown, "reaction").WithDetailf("#%d %s", i, rd.Name)
		}
		lib.Reactions = append(lib.Reactions, rx)
	}
	return lib, nil
}

func buildReaction(rd reactionDoc) (*Reaction, error) {
	if strings.TrimSpace(rd.Name) == "" {
		return nil, errors.New(errors.CodeReactionInvalid, "reaction name is required")
	}
	q, err := chem.CompileQuery(rd.Query)
	if err != nil {
		return nil, err
	}
	rx := &Reaction{Name: rd.Name, Query: q}
	for _, ed := range rd.Edits {
		e := chem.Edit{
			Kind:   chem.EditKind(ed.Kind),
			Atom:   ed.Atom,
			Atom2:  ed.Atom2,
			Charge: ed.Charge,
		}
		if ed.Element != "" {
			z, ok := chem.ElementNumber(ed.Element)
			if !ok {
				return nil, errors.New(errors.CodeReactionInvalid, "unknown element").WithDetail(ed.Element)
			}
			e.Element = z
		}
		order, ok := bondOrderNames[strings.ToLower(ed.Order)]
		if !ok {
			return nil, errors.New(errors.CodeReactionInvalid, "unknown bond order").WithDetail(ed.Order)
		}
		if order == 0 && (e.Kind == chem.EditMakeBond || e.Kind == chem.EditSetBondOrder) {
			order = chem.Single
		}
		e.Order = order
		rx.Edits = append(rx.Edits, e)
	}
	if len(rx.Edits) == 0 {
		return nil, errors.New(errors.CodeReactionInvalid, "reaction has no edits")
	}
	if err := chem.ValidateEdits(q.Size(), rx.Edits); err != nil {
		return nil, err
	}
	return rx, nil
}

//Personal.AI order the ending
