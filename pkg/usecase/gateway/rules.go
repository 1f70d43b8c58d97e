package gateway

import (
	"context"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"

	"github.com/kfpc0808/researchtmfax/pkg/model"
)

// kst is the fixed calendar of the business rules. Contact dates and call
// timestamps are always computed at UTC+9, independent of the host zone.
var kst = time.FixedZone("KST", 9*60*60)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

// ContactRules names the collection, role and fields the business rules
// apply to. The semantics are fixed; only the names are configuration.
type ContactRules struct {
	// Collection is the agent-contact collection guarded by the rules.
	Collection string `yaml:"collection"`
	// Role is the caller role the rules apply to.
	Role string `yaml:"role"`
	// AgentField identifies the agent on a row and in a payload; it is
	// the dedup key of the daily contact rule.
	AgentField string `yaml:"agentField"`
	// MessageField and NotesField are the "contact was made" signals.
	MessageField string `yaml:"messageField"`
	NotesField   string `yaml:"notesField"`
	// TimestampField receives the call date-time when notes change.
	TimestampField string `yaml:"timestampField"`
	// DateField holds the per-row last contact date.
	DateField string `yaml:"dateField"`
}

// DefaultContactRules returns the built-in rule configuration.
func DefaultContactRules() *ContactRules {
	return &ContactRules{
		Collection:     "Companies",
		Role:           "TMer",
		AgentField:     "assignedAgent",
		MessageField:   "generatedMessage",
		NotesField:     "callNotes",
		TimestampField: "callTimestamp",
		DateField:      "lastContactDate",
	}
}

// LoadContactRules loads a rule configuration from a YAML file. An empty
// path returns the defaults. Fields left empty in the file keep their
// default value.
func LoadContactRules(path string) (*ContactRules, error) {
	rules := DefaultContactRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read rules file", goerr.V("path", path))
	}
	if err := yaml.Unmarshal(data, rules); err != nil {
		return nil, goerr.Wrap(err, "failed to parse rules file", goerr.V("path", path))
	}
	return rules, nil
}

const declineMessage = "This agent already has a contact recorded for another company today."

// applyContactRules evaluates the write-guarding business rules for a
// write or update and augments the payload with derived fields before any
// mutation happens. A non-nil result is a soft decline: the write must
// not proceed and the result is returned to the caller as-is.
//
// The rules apply only to the configured collection and role, and only
// when the payload carries an agent value. Snapshots are fetched per rule
// and are not guaranteed to be consistent with each other or with the
// later mutation.
func (u *UseCase) applyContactRules(ctx context.Context, action model.Action, collection string, p *model.Payload) (*model.WriteResult, error) {
	rules := u.rules
	agent := p.Data[rules.AgentField]
	if collection != rules.Collection || p.UserRole != rules.Role || agent == "" {
		return nil, nil
	}

	// Rule A: one contact per agent per day, unless the caller forces
	// the save.
	if !p.ForceSave && (p.Data[rules.MessageField] != "" || p.Data[rules.NotesField] != "") {
		today := u.now().In(kst).Format(dateLayout)
		snapshot, err := u.tabular.FetchAll(ctx, collection)
		if err != nil {
			return nil, err
		}
		for i, row := range snapshot.Rows {
			if action == model.ActionUpdate && p.RowIndex != nil && i == *p.RowIndex {
				continue
			}
			if row.Get(rules.AgentField) == agent && row.Get(rules.DateField) == today {
				return model.Declined(declineMessage), nil
			}
		}
	}
	p.Data[rules.DateField] = u.now().In(kst).Format(dateLayout)

	// Rule B: stamp the call timestamp when the notes actually change.
	// Resubmitting identical notes must not bump the timestamp, and an
	// update whose target row vanished has nothing to compare, so it is
	// left unstamped.
	if p.Data[rules.NotesField] != "" {
		if action == model.ActionUpdate {
			snapshot, err := u.tabular.FetchAll(ctx, collection)
			if err != nil {
				return nil, err
			}
			if p.RowIndex == nil || *p.RowIndex < 0 || *p.RowIndex >= len(snapshot.Rows) {
				return nil, nil
			}
			if snapshot.Rows[*p.RowIndex].Get(rules.NotesField) != p.Data[rules.NotesField] {
				p.Data[rules.TimestampField] = u.now().In(kst).Format(dateTimeLayout)
			}
		} else {
			p.Data[rules.TimestampField] = u.now().In(kst).Format(dateTimeLayout)
		}
	}

	return nil, nil
}
