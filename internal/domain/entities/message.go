package entities

import (
	"encoding/json"
	"fmt"
)

// Action names a message kind on the boundary between page and background.
type Action string

const (
	ActionUpdateStats         Action = "updateStats"
	ActionFetchPackageVersion Action = "fetchPackageVersion"
	ActionCheckStatus         Action = "checkStatus"
	ActionToggleExtension     Action = "toggleExtension"
)

// Message is one of the typed boundary requests below.
type Message interface {
	Action() Action
}

// UpdateStatsMessage reports the counts of a completed scan (fire-and-forget).
type UpdateStatsMessage struct {
	PackagesScanned  int
	OutdatedPackages int
}

func (UpdateStatsMessage) Action() Action { return ActionUpdateStats }

// FetchPackageVersionMessage asks the background for the latest version of a
// package.
type FetchPackageVersionMessage struct {
	PackageName string
}

func (FetchPackageVersionMessage) Action() Action { return ActionFetchPackageVersion }

// CheckStatusMessage asks whether the receiver is alive.
type CheckStatusMessage struct{}

func (CheckStatusMessage) Action() Action { return ActionCheckStatus }

// ToggleExtensionMessage notifies a page context of the new enabled flag.
type ToggleExtensionMessage struct {
	Enabled bool
}

func (ToggleExtensionMessage) Action() Action { return ActionToggleExtension }

// Response is the reply to any Message. Only the fields relevant to the
// request are set; Error is never empty on failure.
type Response struct {
	Version string `json:"version,omitempty"`
	Error   string `json:"error,omitempty"`
	Alive   bool   `json:"alive,omitempty"`
	Enabled *bool  `json:"enabled,omitempty"`
}

// ErrorResponse builds a Response carrying err's message.
func ErrorResponse(err error) Response {
	return Response{Error: err.Error()}
}

// envelope is the JSON shape of a Message on the wire.
type envelope struct {
	Action           Action `json:"action"`
	PackageName      string `json:"packageName,omitempty"`
	PackagesScanned  int    `json:"packagesScanned,omitempty"`
	OutdatedPackages int    `json:"outdatedPackages,omitempty"`
	Enabled          bool   `json:"enabled,omitempty"`
}

// EncodeMessage serialises msg as an action-tagged JSON object.
func EncodeMessage(msg Message) ([]byte, error) {
	env := envelope{Action: msg.Action()}
	switch m := msg.(type) {
	case UpdateStatsMessage:
		env.PackagesScanned = m.PackagesScanned
		env.OutdatedPackages = m.OutdatedPackages
	case FetchPackageVersionMessage:
		env.PackageName = m.PackageName
	case ToggleExtensionMessage:
		env.Enabled = m.Enabled
	case CheckStatusMessage:
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownAction, msg)
	}
	return json.Marshal(env)
}

// DecodeMessage parses an action-tagged JSON object into its typed Message.
func DecodeMessage(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	switch env.Action {
	case ActionUpdateStats:
		return UpdateStatsMessage{
			PackagesScanned:  env.PackagesScanned,
			OutdatedPackages: env.OutdatedPackages,
		}, nil
	case ActionFetchPackageVersion:
		return FetchPackageVersionMessage{PackageName: env.PackageName}, nil
	case ActionCheckStatus:
		return CheckStatusMessage{}, nil
	case ActionToggleExtension:
		return ToggleExtensionMessage{Enabled: env.Enabled}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, env.Action)
	}
}
