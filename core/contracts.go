package core

import (
	"context"
	"iter"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

// ChannelNormalizer translates one channel's raw webhook payload into
// canonical units. Normalize returns a lazy, one-pass sequence that yields
// units in the order they appear in the raw payload; entries missing
// required fields are dropped, not yielded, and must not abort siblings.
type ChannelNormalizer interface {
	Channel() Channel
	Normalize(raw []byte) (iter.Seq[Unit], error)
}

// NormalizeStats accumulates counts while one normalized sequence drains.
// Dropped is only meaningful after the sequence has been consumed.
type NormalizeStats struct {
	Dropped int
}

// StatsNormalizer is implemented by normalizers that can report how many
// entries were dropped during a single pass.
type StatsNormalizer interface {
	NormalizeWithStats(raw []byte) (iter.Seq[Unit], *NormalizeStats, error)
}

// SenderExtractor reports the sender of the first addressable entry in a raw
// payload without running full normalization.
type SenderExtractor interface {
	ExtractSender(raw []byte) (string, error)
}

// TimestampExtractor reports the timestamp of the first addressable entry in
// a raw payload, in epoch milliseconds.
type TimestampExtractor interface {
	ExtractTimestamp(raw []byte) (int64, error)
}

// Dispatcher sends an envelope to a channel's backend queue and resolves
// with the backend reply, or a tagged dispatch error on timeout, transport
// failure, or an explicit backend error payload.
type Dispatcher interface {
	Call(ctx context.Context, queue string, envelope DispatchEnvelope) (ReplyPayload, error)
	CallWithTimeout(ctx context.Context, queue string, envelope DispatchEnvelope, timeout time.Duration) (ReplyPayload, error)
}

// Verifier validates the authenticity proof attached to an inbound request.
type Verifier interface {
	Verify(ctx context.Context, req InboundRequest) error
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}
