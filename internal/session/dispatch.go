package session

import (
	"context"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/skiffworks/skiff/internal/backend"
	"github.com/skiffworks/skiff/internal/logger"
	"github.com/skiffworks/skiff/internal/state"
	"github.com/skiffworks/skiff/internal/telemetry"
	"github.com/skiffworks/skiff/pkg/protocol"
)

// dispatch handles one inbound message. It returns false when the session is
// closed and the read loop should stop.
func (h *Handler) dispatch(ctx context.Context, sess *state.Session, msg protocol.Message) bool {
	switch m := msg.(type) {
	case *protocol.Ping:
		return sess.Send(protocol.NewPong())

	case *protocol.Login:
		// Already authenticated; a second login carries no meaning.
		return true

	case *protocol.RefreshToken:
		return h.handleRefresh(sess, m)

	case *protocol.ListDir:
		return h.handleList(ctx, sess, m)

	case *protocol.Download:
		return h.handleDownload(ctx, sess, m)

	case *protocol.Upload:
		return h.handleUpload(ctx, sess, m)

	case *protocol.Delete:
		return h.handleDelete(ctx, sess, m)

	case *protocol.Rename:
		return h.handleRename(ctx, sess, m)

	case *protocol.Mkdir:
		return h.handleMkdir(ctx, sess, m)

	case *protocol.Capabilities:
		h.state.UpdateCapabilities(sess.ID, &m.ClientCapabilities)
		return true

	case *protocol.OffloadResult:
		h.state.ResolveOffload(m.TaskID, m.Result)
		return true

	default:
		logger.Debug("Ignoring unexpected message",
			logger.SessionID(sess.ID), "type", string(msg.Kind()))
		return true
	}
}

func (h *Handler) handleRefresh(sess *state.Session, m *protocol.RefreshToken) bool {
	pair, err := h.tokens.Refresh(m.RefreshToken)
	if err != nil {
		// The session stays open; the client may retry with a valid token.
		return sess.Send(protocol.NewAuthError(err.Error()))
	}
	return sess.Send(protocol.NewAuthSuccess(pair.AccessToken, pair.RefreshToken, pair.ExpiresIn))
}

func (h *Handler) handleList(ctx context.Context, sess *state.Session, m *protocol.ListDir) bool {
	ctx, span := telemetry.StartSessionSpan(ctx, "list_dir", sess.ID, sess.Username, telemetry.FilePath(m.Path))
	defer span.End()

	start := time.Now()
	entries, err := h.backend.ListDir(ctx, m.Path)
	h.state.ObserveBackendOp("list", time.Since(start).Seconds(), err == nil)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return sess.Send(protocol.NewOpError("list", m.Path, err.Error()))
	}
	return sess.Send(protocol.NewDirListing(m.Path, toWireEntries(entries)))
}

func (h *Handler) handleDownload(ctx context.Context, sess *state.Session, m *protocol.Download) bool {
	ctx, span := telemetry.StartSessionSpan(ctx, "download", sess.ID, sess.Username, telemetry.FilePath(m.Path))
	defer span.End()

	if !h.state.StartTransfer() {
		return sess.Send(protocol.NewOpError("download", m.Path, tooManyTransfersMessage))
	}

	start := time.Now()
	content, err := h.backend.Download(ctx, m.Path)
	h.state.EndTransfer()
	h.state.ObserveBackendOp("download", time.Since(start).Seconds(), err == nil)

	if err != nil {
		telemetry.RecordError(ctx, err)
		return sess.Send(protocol.NewOpError("download", m.Path, err.Error()))
	}
	return sess.Send(protocol.NewFileContent(m.Path, content, detectMime(content)))
}

func (h *Handler) handleUpload(ctx context.Context, sess *state.Session, m *protocol.Upload) bool {
	ctx, span := telemetry.StartSessionSpan(ctx, "upload", sess.ID, sess.Username, telemetry.FilePath(m.Path))
	defer span.End()

	if !h.state.StartTransfer() {
		return sess.Send(protocol.NewOpError("upload", m.Path, tooManyTransfersMessage))
	}

	start := time.Now()
	err := h.backend.Upload(ctx, m.Path, m.Content, true)
	h.state.EndTransfer()
	h.state.ObserveBackendOp("upload", time.Since(start).Seconds(), err == nil)

	if err != nil {
		telemetry.RecordError(ctx, err)
		return sess.Send(protocol.NewOpError("upload", m.Path, err.Error()))
	}

	h.state.Broadcast(protocol.NewFsCreated(m.Path, false))
	return sess.Send(protocol.NewOpSuccess("upload", m.Path))
}

func (h *Handler) handleDelete(ctx context.Context, sess *state.Session, m *protocol.Delete) bool {
	ctx, span := telemetry.StartSessionSpan(ctx, "delete", sess.ID, sess.Username, telemetry.FilePath(m.Path))
	defer span.End()

	start := time.Now()
	err := h.backend.Delete(ctx, m.Path)
	h.state.ObserveBackendOp("delete", time.Since(start).Seconds(), err == nil)

	if err != nil {
		telemetry.RecordError(ctx, err)
		return sess.Send(protocol.NewOpError("delete", m.Path, err.Error()))
	}

	h.state.Broadcast(protocol.NewFsDeleted(m.Path))
	return sess.Send(protocol.NewOpSuccess("delete", m.Path))
}

func (h *Handler) handleRename(ctx context.Context, sess *state.Session, m *protocol.Rename) bool {
	ctx, span := telemetry.StartSessionSpan(ctx, "rename", sess.ID, sess.Username,
		telemetry.RenameFrom(m.From), telemetry.RenameTo(m.To))
	defer span.End()

	start := time.Now()
	err := h.backend.Rename(ctx, m.From, m.To)
	h.state.ObserveBackendOp("rename", time.Since(start).Seconds(), err == nil)

	if err != nil {
		telemetry.RecordError(ctx, err)
		return sess.Send(protocol.NewOpError("rename", m.From, err.Error()))
	}

	h.state.Broadcast(protocol.NewFsRenamed(m.From, m.To))
	return sess.Send(protocol.NewOpSuccess("rename", m.From))
}

func (h *Handler) handleMkdir(ctx context.Context, sess *state.Session, m *protocol.Mkdir) bool {
	ctx, span := telemetry.StartSessionSpan(ctx, "mkdir", sess.ID, sess.Username, telemetry.FilePath(m.Path))
	defer span.End()

	start := time.Now()
	err := h.backend.Mkdir(ctx, m.Path)
	h.state.ObserveBackendOp("mkdir", time.Since(start).Seconds(), err == nil)

	if err != nil {
		telemetry.RecordError(ctx, err)
		return sess.Send(protocol.NewOpError("mkdir", m.Path, err.Error()))
	}

	h.state.Broadcast(protocol.NewFsCreated(m.Path, true))
	return sess.Send(protocol.NewOpSuccess("mkdir", m.Path))
}

func toWireEntries(entries []backend.FileEntry) []protocol.FileEntry {
	out := make([]protocol.FileEntry, len(entries))
	for i, e := range entries {
		out[i] = protocol.FileEntry{
			Name:     e.Name,
			Path:     e.Path,
			IsDir:    e.IsDir(),
			Size:     e.Size,
			Modified: e.Modified,
			MimeType: e.MimeType,
		}
	}
	return out
}

// detectMime sniffs downloaded content; the raw backend endpoint does not
// report a content type.
func detectMime(content []byte) *string {
	mt := mimetype.Detect(content).String()
	return &mt
}
