// Package protocol defines the WebSocket wire protocol between skiff clients
// and the daemon.
//
// Every message is a single JSON object carrying a snake_case "type" field
// that discriminates the variant. Binary payloads are base64-encoded strings
// (standard alphabet with padding), which is what encoding/json produces for
// []byte fields natively.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType discriminates wire messages.
type MessageType string

// Client to server message types.
const (
	TypeLogin         MessageType = "login"
	TypeRefreshToken  MessageType = "refresh_token"
	TypeListDir       MessageType = "list_dir"
	TypeDownload      MessageType = "download"
	TypeUpload        MessageType = "upload"
	TypeDelete        MessageType = "delete"
	TypeRename        MessageType = "rename"
	TypeMkdir         MessageType = "mkdir"
	TypeCapabilities  MessageType = "capabilities"
	TypeOffloadResult MessageType = "offload_result"
	TypePing          MessageType = "ping"
)

// Server to client message types.
const (
	TypeAuthSuccess    MessageType = "auth_success"
	TypeAuthError      MessageType = "auth_error"
	TypeDirListing     MessageType = "dir_listing"
	TypeFileContent    MessageType = "file_content"
	TypeOpSuccess      MessageType = "op_success"
	TypeOpError        MessageType = "op_error"
	TypeLoad           MessageType = "load"
	TypeOffloadRequest MessageType = "offload_request"
	TypeFsEvent        MessageType = "fs_event"
	TypePong           MessageType = "pong"
	TypeError          MessageType = "error"
)

// ErrUnknownType is returned by Decode for a message whose type tag does not
// name a known variant.
var ErrUnknownType = errors.New("unknown message type")

// Message is implemented by every wire message. Values must be built through
// the package constructors so the type tag is populated for marshaling.
type Message interface {
	Kind() MessageType
}

// Encode marshals a message to its JSON wire form.
func Encode(m Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s message: %w", m.Kind(), err)
	}
	return data, nil
}

// Decode parses a wire message, dispatching on the type tag.
func Decode(data []byte) (Message, error) {
	var head struct {
		Type MessageType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("malformed message: %w", err)
	}

	var msg Message
	switch head.Type {
	case TypeLogin:
		msg = &Login{}
	case TypeRefreshToken:
		msg = &RefreshToken{}
	case TypeListDir:
		msg = &ListDir{}
	case TypeDownload:
		msg = &Download{}
	case TypeUpload:
		msg = &Upload{}
	case TypeDelete:
		msg = &Delete{}
	case TypeRename:
		msg = &Rename{}
	case TypeMkdir:
		msg = &Mkdir{}
	case TypeCapabilities:
		msg = &Capabilities{}
	case TypeOffloadResult:
		msg = &OffloadResult{}
	case TypePing:
		msg = &Ping{}
	case TypeAuthSuccess:
		msg = &AuthSuccess{}
	case TypeAuthError:
		msg = &AuthError{}
	case TypeDirListing:
		msg = &DirListing{}
	case TypeFileContent:
		msg = &FileContent{}
	case TypeOpSuccess:
		msg = &OpSuccess{}
	case TypeOpError:
		msg = &OpError{}
	case TypeLoad:
		msg = &Load{}
	case TypeOffloadRequest:
		msg = &OffloadRequest{}
	case TypeFsEvent:
		msg = &FsEvent{}
	case TypePong:
		msg = &Pong{}
	case TypeError:
		msg = &ErrorMessage{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, head.Type)
	}

	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("malformed %s message: %w", head.Type, err)
	}
	return msg, nil
}
