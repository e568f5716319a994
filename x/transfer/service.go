// Package transfer implements bandwidth-shaped chunked file upload and
// download. Both directions are paced byte-by-byte through the same
// admission engine that governs messaging, each against its own lane.
package transfer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/xid"
	"go.opentelemetry.io/otel"

	"github.com/priorstream/chat/x/channel"
	"github.com/priorstream/chat/x/core"
	"github.com/priorstream/chat/x/limiter"
	"github.com/priorstream/chat/x/message"
	"github.com/priorstream/chat/x/policy"
	"github.com/priorstream/chat/x/socket"
	"github.com/priorstream/chat/x/stream"
	"github.com/priorstream/chat/x/util"
)

var tracer = otel.Tracer("transfer")

const (
	copyChunk  = 64 * 1024
	primeBytes = 16 * 1024

	// progress telemetry window
	progressInterval = 500 * time.Millisecond
)

// Service is the interface for the transfer service
type Service interface {
	Upload(ctx context.Context, req UploadRequest) (UploadResult, error)
	OpenDownload(ctx context.Context, attachmentID uint, userID uint) (*Download, error)
}

type service struct {
	repo    Repository
	limiter limiter.Service
	channel channel.Service
	stream  stream.Service
	policy  policy.Service
	message message.Service
	manager socket.Manager
	config  util.Config
}

// NewService creates a new transfer service
func NewService(
	repo Repository,
	limiter limiter.Service,
	channel channel.Service,
	stream stream.Service,
	policy policy.Service,
	message message.Service,
	manager socket.Manager,
	config util.Config,
) Service {
	return &service{
		repo:    repo,
		limiter: limiter,
		channel: channel,
		stream:  stream,
		policy:  policy,
		message: message,
		manager: manager,
		config:  config,
	}
}

// progressMeter unicasts throughput telemetry to the initiating participant
// at most once per window, plus a final report at completion.
type progressMeter struct {
	manager   socket.Manager
	userID    uint
	messageID uint
	total     int64

	moved    int64
	window   int64
	start    time.Time
	lastEmit time.Time
}

func newProgressMeter(manager socket.Manager, userID uint, messageID uint, total int64) *progressMeter {
	now := time.Now()
	return &progressMeter{
		manager:   manager,
		userID:    userID,
		messageID: messageID,
		total:     total,
		start:     now,
		lastEmit:  now,
	}
}

func (m *progressMeter) account(n int64) {
	m.moved += n
	m.window += n

	now := time.Now()
	elapsed := now.Sub(m.lastEmit)
	if elapsed < progressInterval {
		return
	}

	m.emit(int64(float64(m.window) / elapsed.Seconds()))
	m.lastEmit = now
	m.window = 0
}

// finish emits the completion report regardless of the window gate
func (m *progressMeter) finish() {
	elapsed := time.Since(m.start).Seconds()
	if elapsed <= 0 {
		elapsed = 1e-6
	}
	m.emit(int64(float64(m.moved) / elapsed))
}

func (m *progressMeter) emit(bps int64) {
	m.manager.Unicast(m.userID, core.ProgressEvent{
		Type:      core.EventUploadProgress,
		MessageID: m.messageID,
		Bytes:     m.moved,
		Total:     m.total,
		Bps:       bps,
		ElapsedMs: time.Since(m.start).Milliseconds(),
	})
}

// Upload persists an inbound byte stream at the uploader's paced rate.
// A placeholder message is created first so the channel can reference the
// transfer; on completion the attachment row is linked into its metadata
// and the finished message fans out to the channel.
func (s *service) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	ctx, span := tracer.Start(ctx, "ServiceUpload")
	defer span.End()

	member, err := s.channel.IsMember(ctx, req.ChannelID, req.UserID)
	if err != nil {
		span.RecordError(err)
		return UploadResult{}, err
	}
	if !member {
		return UploadResult{}, core.NewErrorPermissionDenied()
	}

	lane, err := s.stream.GetOrCreate(ctx, req.ChannelID, req.UserID)
	if err != nil {
		span.RecordError(err)
		return UploadResult{}, err
	}

	effective, err := s.policy.Resolve(ctx, lane.ID)
	if err != nil {
		span.RecordError(err)
		return UploadResult{}, err
	}

	placeholder, err := s.message.Create(ctx, core.Message{
		ChannelID: req.ChannelID,
		StreamID:  lane.ID,
		SenderID:  req.UserID,
		Meta:      core.JSONB{"kind": "file", "file_name": req.Filename},
	})
	if err != nil {
		span.RecordError(err)
		return UploadResult{}, err
	}

	if err := os.MkdirAll(s.config.Server.UploadDir, 0o755); err != nil {
		span.RecordError(err)
		return UploadResult{}, pkgerrors.Wrap(err, "failed to create upload dir")
	}
	destPath := filepath.Join(s.config.Server.UploadDir,
		fmt.Sprintf("%d_%s_%s", placeholder.ID, xid.New().String(), filepath.Base(req.Filename)))

	out, err := os.Create(destPath)
	if err != nil {
		span.RecordError(err)
		return UploadResult{}, pkgerrors.Wrap(err, "failed to create upload file")
	}
	defer out.Close()

	pacer := NewPacer(s.limiter, limiter.BucketKey(lane.ID, limiter.KindUpload), effective.UploadBps)
	meter := newProgressMeter(s.manager, req.UserID, placeholder.ID, req.Size)

	buf := make([]byte, copyChunk)
	var total int64
	for {
		n, rerr := req.Body.Read(buf)

		off := 0
		for off < n {
			granted, err := pacer.Ration(ctx, int64(n-off))
			if err != nil {
				span.RecordError(err)
				return UploadResult{}, err
			}
			if _, err := out.Write(buf[off : off+int(granted)]); err != nil {
				span.RecordError(err)
				return UploadResult{}, pkgerrors.Wrap(err, "failed to write upload file")
			}
			off += int(granted)
			total += granted
			meter.account(granted)
		}

		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			span.RecordError(rerr)
			return UploadResult{}, pkgerrors.Wrap(rerr, "failed to read upload stream")
		}
	}

	meter.finish()

	attachment, err := s.repo.CreateAttachment(ctx, core.Attachment{
		MessageID:   placeholder.ID,
		FileName:    req.Filename,
		ContentType: req.ContentType,
		Size:        total,
		StoragePath: destPath,
	})
	if err != nil {
		span.RecordError(err)
		return UploadResult{}, err
	}

	meta := core.JSONB{
		"kind":          "file",
		"attachment_id": attachment.ID,
		"file_name":     req.Filename,
		"size":          total,
	}
	if err := s.message.UpdateMeta(ctx, placeholder.ID, meta); err != nil {
		span.RecordError(err)
		return UploadResult{}, err
	}

	// subscribers that joined after the placeholder was created still
	// observe the completed transfer
	placeholder.Meta = meta
	s.manager.Multicast(req.ChannelID, core.MessageEvent{
		Type:    core.EventMessageNew,
		Message: message.View(placeholder),
	})

	return UploadResult{
		AttachmentID: attachment.ID,
		MessageID:    placeholder.ID,
		Size:         total,
	}, nil
}

// Download is an open paced download ready to stream
type Download struct {
	Attachment core.Attachment

	file  *os.File
	pacer *Pacer
}

// OpenDownload authorizes the request and prepares a paced stream governed
// by the downloading participant's own lane and download policy, not the
// uploader's.
func (s *service) OpenDownload(ctx context.Context, attachmentID uint, userID uint) (*Download, error) {
	ctx, span := tracer.Start(ctx, "ServiceOpenDownload")
	defer span.End()

	attachment, err := s.repo.GetAttachment(ctx, attachmentID)
	if err != nil {
		return nil, err
	}
	msg, err := s.message.Get(ctx, attachment.MessageID)
	if err != nil {
		return nil, err
	}

	member, err := s.channel.IsMember(ctx, msg.ChannelID, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !member {
		return nil, core.NewErrorPermissionDenied()
	}

	lane, err := s.stream.GetOrCreate(ctx, msg.ChannelID, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	effective, err := s.policy.Resolve(ctx, lane.ID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	file, err := os.Open(attachment.StoragePath)
	if err != nil {
		span.RecordError(err)
		return nil, pkgerrors.Wrap(err, "failed to open attachment file")
	}

	return &Download{
		Attachment: attachment,
		file:       file,
		pacer:      NewPacer(s.limiter, limiter.BucketKey(lane.ID, limiter.KindDownload), effective.DownloadBps),
	}, nil
}

// SendTo streams the attachment to w at the paced rate. A small fixed
// slice is primed through the same grant mechanism first to cut perceived
// start latency without bypassing rate governance.
func (d *Download) SendTo(ctx context.Context, w io.Writer) error {
	defer d.file.Close()

	flusher, _ := w.(http.Flusher)

	prime := make([]byte, primeBytes)
	n, err := d.file.Read(prime)
	if n > 0 {
		granted, gerr := d.pacer.Request(ctx, int64(n))
		if gerr != nil {
			return gerr
		}
		if granted > 0 {
			if _, werr := w.Write(prime[:granted]); werr != nil {
				return werr
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		// whatever the priming grant did not cover goes through the
		// steady-state tick loop
		if err := d.sendSlice(ctx, w, flusher, prime[granted:n]); err != nil {
			return err
		}
	}
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return pkgerrors.Wrap(err, "failed to read attachment file")
	}

	buf := make([]byte, copyChunk)
	for {
		n, err := d.file.Read(buf)
		if n > 0 {
			if serr := d.sendSlice(ctx, w, flusher, buf[:n]); serr != nil {
				return serr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return pkgerrors.Wrap(err, "failed to read attachment file")
		}
	}
}

func (d *Download) sendSlice(ctx context.Context, w io.Writer, flusher http.Flusher, data []byte) error {
	off := 0
	for off < len(data) {
		granted, err := d.pacer.Ration(ctx, int64(len(data)-off))
		if err != nil {
			return err
		}
		if _, err := w.Write(data[off : off+int(granted)]); err != nil {
			return err
		}
		off += int(granted)
		if flusher != nil {
			flusher.Flush()
		}
	}
	return nil
}
