package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/birthday-dashboard/internal/backend"
	"github.com/tartampluch/birthday-dashboard/internal/config"
)

// EncodeVCards writes one vCard 4.0 per friend.
func EncodeVCards(w io.Writer, friends []backend.Friend) error {
	enc := vcard.NewEncoder(w)
	for _, f := range friends {
		card := make(vcard.Card)
		card.SetValue(vcard.FieldFormattedName, f.Name)
		card.SetValue(vcard.FieldBirthday, f.Birthday)
		if f.Email != "" {
			card.SetValue(vcard.FieldEmail, f.Email)
		}
		if f.Phone != "" {
			card.SetValue(vcard.FieldTelephone, f.Phone)
		}
		if f.Notes != "" {
			card.SetValue(vcard.FieldNote, f.Notes)
		}
		if f.Relationship != "" {
			card.SetValue(config.VCardRelationship, f.Relationship)
		}
		vcard.ToV4(card)

		if err := enc.Encode(card); err != nil {
			return fmt.Errorf("%s: %w", config.ErrVCardEncode, err)
		}
	}
	return nil
}

// DecodeVCards reads a vCard stream into friend inputs.
// Cards without a name or without a birthday carrying a year are skipped:
// the backend stores full dates only.
func DecodeVCards(r io.Reader) ([]backend.FriendInput, error) {
	dec := vcard.NewDecoder(r)
	var inputs []backend.FriendInput

	for {
		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A broken stream cannot be resynchronized; keep what was read.
			if len(inputs) == 0 {
				return nil, fmt.Errorf("%s: %w", config.ErrVCardDecode, err)
			}
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyError, err)
			break
		}

		name := strings.TrimSpace(card.PreferredValue(vcard.FieldFormattedName))
		if name == "" {
			if n := card.Name(); n != nil {
				name = strings.TrimSpace(strings.Join([]string{n.GivenName, n.FamilyName}, " "))
			}
		}
		if name == "" {
			slog.Debug(config.MsgSkippedCard, config.LogKeyComponent, config.CompEngine)
			continue
		}

		birthday, err := parseBirthday(card.Value(vcard.FieldBirthday))
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, name)
			continue
		}

		inputs = append(inputs, backend.FriendInput{
			Name:         name,
			Birthday:     birthday.Format(config.DateLayout),
			Relationship: card.Value(config.VCardRelationship),
			Email:        card.PreferredValue(vcard.FieldEmail),
			Phone:        card.PreferredValue(vcard.FieldTelephone),
			Notes:        card.Value(vcard.FieldNote),
		})
	}
	return inputs, nil
}

// parseBirthday accepts the vCard BDAY layouts that carry a year.
// Truncated dates like --MM-DD are rejected.
func parseBirthday(value string) (time.Time, error) {
	layouts := []string{
		config.DateLayout,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New(config.ErrDateParse)
}
