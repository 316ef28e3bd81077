package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"coastalstay/internal/app/commands"
)

// IdempotentCommand is implemented by commands a client may resend with the
// same Idempotency-Key header, such as the inquiry form or a booking import.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	ResultPrototype() any // pointer to the handler result type
}

// IdempotencyRecord is a stored outcome. Kind is the message of the known
// error the failure matched, so a replay maps to the same status code.
type IdempotencyRecord struct {
	Key        string
	Payload    []byte
	Error      string
	Kind       string
	OccurredAt time.Time
}

// IdempotencyStore keeps one record per command key and idempotency key.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

// ResultCodec turns handler results into stored payloads and back.
type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSONResultCodec) Decode(data []byte, out any) error { return json.Unmarshal(data, out) }

// IdempotencyOptions configures Idempotency. Records older than TTL are
// ignored; zero keeps them forever. Known lists the errors worth storing: a
// failure matching one of them is replayed and still matches it with
// errors.Is. Other failures are not stored.
type IdempotencyOptions struct {
	TTL   time.Duration
	Codec ResultCodec
	Known []error
	Now   func() time.Time
}

var errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")

// ErrReplayedFailure marks the stored failure of an earlier attempt.
var ErrReplayedFailure = errors.New("middleware: command previously failed")

// Idempotency replays the stored outcome of an IdempotentCommand resent with
// the same key instead of running it again.
func Idempotency(store IdempotencyStore, opts IdempotencyOptions) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if opts.Codec == nil {
		opts.Codec = JSONResultCodec{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok || idCmd.IdempotencyKey() == "" {
				return next.Dispatch(ctx, cmd)
			}
			key := cmd.Key() + ":" + idCmd.IdempotencyKey()
			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if found && (opts.TTL <= 0 || opts.Now().Sub(rec.OccurredAt) <= opts.TTL) {
				return opts.replay(idCmd, rec)
			}

			result, err := next.Dispatch(ctx, cmd)
			record := IdempotencyRecord{Key: key, OccurredAt: opts.Now().UTC()}
			if err != nil {
				// Only known failures are final; anything else may pass on retry.
				known := opts.match(err)
				if known == nil {
					return nil, err
				}
				record.Error = err.Error()
				record.Kind = known.Error()
				if saveErr := store.Save(ctx, record); saveErr != nil {
					return nil, errors.Join(err, saveErr)
				}
				return nil, err
			}
			if result != nil {
				if record.Payload, err = opts.Codec.Encode(result); err != nil {
					return nil, err
				}
			}
			if err := store.Save(ctx, record); err != nil {
				return nil, err
			}
			return result, nil
		})
	}
}

func (o IdempotencyOptions) replay(cmd IdempotentCommand, rec IdempotencyRecord) (any, error) {
	if rec.Error != "" {
		for _, known := range o.Known {
			if known.Error() == rec.Kind {
				return nil, fmt.Errorf("%w: %w", ErrReplayedFailure, known)
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrReplayedFailure, rec.Error)
	}
	proto := cmd.ResultPrototype()
	if proto == nil {
		return nil, errMissingPrototype
	}
	if err := o.Codec.Decode(rec.Payload, proto); err != nil {
		return nil, err
	}
	return normalizePrototype(proto), nil
}

func (o IdempotencyOptions) match(err error) error {
	for _, known := range o.Known {
		if errors.Is(err, known) {
			return known
		}
	}
	return nil
}

func normalizePrototype(proto any) any {
	rv := reflect.ValueOf(proto)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		return rv.Interface()
	}
	return proto
}
