// Package services contains server-side business logic. MessageService
// decodes each envelope arriving through MessageMain, applies it to the
// ledger, byte-store or session registry, and renders the reply text.
package services

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/dmitrijs2005/matthias/internal/common"
	"github.com/dmitrijs2005/matthias/internal/logging"
	"github.com/dmitrijs2005/matthias/internal/protocol"
	"github.com/dmitrijs2005/matthias/internal/server/bytestore"
	"github.com/dmitrijs2005/matthias/internal/server/ledger"
	"github.com/dmitrijs2005/matthias/internal/server/metrics"
	"github.com/dmitrijs2005/matthias/internal/server/sessions"
)

type MessageService struct {
	ledger   *ledger.Ledger
	blobs    bytestore.Store
	sessions *sessions.Registry
	password string
	logger   logging.Logger
}

// NewMessageService wires the service. An empty password lets every client connect.
func NewMessageService(l *ledger.Ledger, b bytestore.Store, r *sessions.Registry, password string, logger logging.Logger) *MessageService {
	return &MessageService{
		ledger:   l,
		blobs:    b,
		sessions: r,
		password: password,
		logger:   logger.With("module", "message_service"),
	}
}

// Handle processes one request text and returns the reply text.
//
// Protocol-level refusals are replies, not errors: an undecodable envelope
// yields common.ReplyInvalidClient and a wrong password on Connect yields
// common.ReplyInvalidPassword. Returned errors wrap common sentinels.
func (s *MessageService) Handle(ctx context.Context, request string) (string, error) {
	env, err := protocol.DecodeEnvelope(request)
	if err != nil {
		s.logger.Warn(ctx, "Rejecting envelope", "error", err)
		metrics.IncRejected("invalid_client")
		return common.ReplyInvalidClient, nil
	}

	kind := string(env.Payload.Kind())
	if sync, ok := env.Payload.(protocol.Sync); ok {
		kind += ":" + string(sync.Mode)
		if sync.Mode == protocol.Connect {
			metrics.IncEnvelope(kind)
			return s.connect(ctx, env.Header, sync), nil
		}
	}
	metrics.IncEnvelope(kind)

	if _, ok := s.sessions.Lookup(env.SenderID); !ok {
		metrics.IncRejected("unauthenticated")
		return "", fmt.Errorf("sender %q: %w", env.SenderID, common.ErrUnauthorized)
	}

	reply, err := s.dispatch(ctx, env)
	if err != nil {
		metrics.IncRejected(rejectReason(err))
		return "", err
	}
	return reply, nil
}

func (s *MessageService) dispatch(ctx context.Context, env protocol.Envelope) (string, error) {
	switch p := env.Payload.(type) {
	case protocol.Sync:
		return s.sync(ctx, env.Header, p)
	case protocol.Post:
		return s.appendOutput(ctx, protocol.ToOutput(env, 0, protocol.OutputNormal, nil, env.SenderID))
	case protocol.Upload:
		return s.upload(ctx, env.Header, p)
	case protocol.FileRequest:
		b, err := s.blobs.Get(ctx, p.Index)
		if err != nil {
			return "", err
		}
		return protocol.EncodeReply(protocol.FileReply{Bytes: b.Bytes, FileName: b.Name})
	case protocol.ImageRequest:
		b, err := s.blobs.Get(ctx, p.Index)
		if err != nil {
			return "", err
		}
		return protocol.EncodeReply(protocol.ImageReply{Bytes: b.Bytes, Index: p.Index})
	case protocol.AudioRequest:
		b, err := s.blobs.Get(ctx, p.Index)
		if err != nil {
			return "", err
		}
		return protocol.EncodeReply(protocol.AudioReply{Bytes: b.Bytes, Index: p.Index, FileName: b.Name})
	case protocol.Reaction:
		if err := s.ledger.React(ctx, p.TargetIndex, p.Char); err != nil {
			return "", err
		}
		return common.ReplyOK, nil
	case protocol.Edit:
		var text string
		if p.NewText != nil {
			text = *p.NewText
		}
		if err := s.ledger.EditOwned(ctx, p.TargetIndex, text, env.SenderID); err != nil {
			return "", err
		}
		return common.ReplyOK, nil
	default:
		return "", fmt.Errorf("%w: %T", common.ErrInvalidFormat, p)
	}
}

func (s *MessageService) connect(ctx context.Context, h protocol.Header, p protocol.Sync) string {
	if !s.passwordMatches(p.Password) {
		s.logger.Info(ctx, "Connect refused", "sender_id", h.SenderID)
		metrics.IncRejected("invalid_password")
		return common.ReplyInvalidPassword
	}

	secret := s.sessions.Connect(h.SenderID, h.Author)
	if p.LastSeenIndex != nil {
		s.ledger.MarkSeen(h.SenderID, *p.LastSeenIndex)
	}
	metrics.SetConnected(s.sessions.Count())
	s.logger.Info(ctx, "Connected", "sender_id", h.SenderID, "author", h.Author)
	return secret
}

func (s *MessageService) passwordMatches(candidate string) bool {
	if s.password == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(s.password)) == 1
}

func (s *MessageService) sync(ctx context.Context, h protocol.Header, p protocol.Sync) (string, error) {
	switch p.Mode {
	case protocol.Disconnect:
		if p.LastSeenIndex != nil {
			s.ledger.MarkSeen(h.SenderID, *p.LastSeenIndex)
		}
		s.sessions.Disconnect(h.SenderID)
		metrics.SetConnected(s.sessions.Count())
		s.logger.Info(ctx, "Disconnected", "sender_id", h.SenderID)
		return common.ReplyDisconnected, nil
	case protocol.SyncCounts:
		if p.LastSeenIndex != nil {
			s.ledger.MarkSeen(h.SenderID, *p.LastSeenIndex)
		}
		known := 0
		if p.KnownCount != nil {
			known = *p.KnownCount
		}
		return protocol.EncodeReply(protocol.Master{Outputs: s.ledger.SyncDelta(known)})
	default:
		return "", fmt.Errorf("%w: sync mode %q", common.ErrInvalidFormat, p.Mode)
	}
}

func (s *MessageService) upload(ctx context.Context, h protocol.Header, u protocol.Upload) (string, error) {
	idx, err := s.blobs.Put(ctx, bytestore.Blob{Name: u.FileName(), Bytes: u.Bytes})
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	metrics.AddUploadedBytes(len(u.Bytes))

	out := protocol.NewOutput(h, u, idx, protocol.ClassifyUpload(u), nil, h.SenderID)
	return s.appendOutput(ctx, out)
}

func (s *MessageService) appendOutput(ctx context.Context, out protocol.Output) (string, error) {
	idx, err := s.ledger.Append(ctx, out)
	if err != nil {
		return "", fmt.Errorf("append message: %w", err)
	}
	s.logger.Debug(ctx, "Appended", "index", idx, "kind", out.Payload.OutputKind())
	return common.ReplyOK, nil
}
