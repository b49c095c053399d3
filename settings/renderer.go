package settings

import (
	"context"
	"fmt"

	"github.com/vesper-bot/vesper-store/model"
	"github.com/vesper-bot/vesper-store/store"
)

// Description is one rendered setting: the display name and the template
// text with the live value substituted in.
type Description struct {
	Key         Key
	DisplayName string
	Text        string
	Value       any
}

// Renderer resolves settings metadata against live rows. Values are
// fetched at render time, never cached.
type Renderer struct {
	reg   *Registry
	store store.Store
}

func NewRenderer(reg *Registry, st store.Store) *Renderer {
	return &Renderer{reg: reg, store: st}
}

// Describe renders one setting for the row identified by id (a user ID
// for profile settings, a guild ID otherwise).
func (r *Renderer) Describe(ctx context.Context, k Key, id int64) (*Description, error) {
	s, ok := r.reg.Lookup(k)
	if !ok {
		return nil, fmt.Errorf("setting %s.%s: %w", k.Entity, k.Column, model.ErrUnknownSetting)
	}
	v, err := r.liveValue(ctx, k, id)
	if err != nil {
		return nil, err
	}
	return &Description{
		Key:         k,
		DisplayName: s.DisplayName,
		Text:        s.render(v),
		Value:       v,
	}, nil
}

// DescribeAll renders every registered setting of an entity for one row
// with a single fetch per entity, ordered by column name.
func (r *Renderer) DescribeAll(ctx context.Context, e Entity, id int64) ([]*Description, error) {
	values, err := r.liveValues(ctx, e, id)
	if err != nil {
		return nil, err
	}
	var out []*Description
	for _, k := range r.reg.Keys(e) {
		s, _ := r.reg.Lookup(k)
		v, ok := values[k.Column]
		if !ok {
			return nil, fmt.Errorf("setting %s.%s: %w", k.Entity, k.Column, model.ErrUnknownSetting)
		}
		out = append(out, &Description{Key: k, DisplayName: s.DisplayName, Text: s.render(v), Value: v})
	}
	return out, nil
}

func (r *Renderer) liveValue(ctx context.Context, k Key, id int64) (any, error) {
	values, err := r.liveValues(ctx, k.Entity, id)
	if err != nil {
		return nil, err
	}
	v, ok := values[k.Column]
	if !ok {
		return nil, fmt.Errorf("setting %s.%s: %w", k.Entity, k.Column, model.ErrUnknownSetting)
	}
	return v, nil
}

// liveValues snapshots the settable columns of one row. The column names
// line up with the defaults maps in model, so the registry, the store
// whitelists and this extraction stay in one vocabulary.
func (r *Renderer) liveValues(ctx context.Context, e Entity, id int64) (map[string]any, error) {
	switch e {
	case EntityProfile:
		p, err := r.store.Profiles().Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"receive_highlights":   p.ReceiveHighlights,
			"default_ephemeral":    p.DefaultEphemeral,
			"silence_hl":           p.SilenceHL,
			"reminders_in_channel": p.RemindersInChannel,
			"hl_timeout":           p.HLTimeout,
			"timezone":             p.Timezone,
		}, nil
	case EntityGuildConfig:
		gc, err := r.store.Guilds().Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"starboard":        gc.Starboard,
			"allow_highlights": gc.AllowHighlights,
		}, nil
	case EntityStarboard:
		sb, err := r.store.Starboards().Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"channel":    sb.Channel,
			"threshold":  sb.Threshold,
			"format":     sb.Format,
			"max_days":   sb.MaxDays,
			"emoji":      sb.Emoji,
			"super_mult": sb.SuperMult,
		}, nil
	default:
		return nil, fmt.Errorf("entity %q: %w", e, model.ErrUnknownSetting)
	}
}
