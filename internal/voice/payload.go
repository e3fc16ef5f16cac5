// Package voice turns inbound Alexa skill events into pairing and task intake
// calls and renders the spoken reply.
package voice

import (
	"errors"
	"strings"
)

const (
	TypeLaunch = "LaunchRequest"
	TypeIntent = "IntentRequest"

	IntentRequestHelp    = "RequestHelpIntent"
	IntentRegisterDevice = "RegisterDeviceIntent"

	SlotTask = "Task"
	SlotRoom = "room"
	SlotPIN  = "PIN"
)

var ErrMalformed = errors.New("malformed voice payload")

// Envelope 平台推送的原始 JSON 结构，只保留用到的字段
type Envelope struct {
	Version string `json:"version"`
	Request struct {
		Type   string `json:"type"`
		Intent *struct {
			Name  string          `json:"name"`
			Slots map[string]Slot `json:"slots"`
		} `json:"intent"`
	} `json:"request"`
	Context struct {
		System struct {
			Device struct {
				DeviceID string `json:"deviceId"`
			} `json:"device"`
		} `json:"System"`
	} `json:"context"`
}

type Slot struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Event 解析后的封闭变体：*Launch、*Intent 或 *Other
type Event interface {
	DeviceID() string
	isEvent()
}

type base struct{ deviceID string }

func (b base) DeviceID() string { return b.deviceID }
func (base) isEvent()           {}

type Launch struct{ base }

type Intent struct {
	base
	Name  string
	Slots map[string]string
}

// Slot 缺失或为空时 ok=false
func (i *Intent) Slot(name string) (string, bool) {
	v, ok := i.Slots[name]
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

type Other struct {
	base
	Type string
}

// Parse IntentRequest 缺少 intent 名称时视为格式错误
func Parse(env *Envelope) (Event, error) {
	if env == nil {
		return nil, ErrMalformed
	}
	b := base{deviceID: strings.TrimSpace(env.Context.System.Device.DeviceID)}

	switch env.Request.Type {
	case TypeLaunch:
		return &Launch{base: b}, nil
	case TypeIntent:
		if env.Request.Intent == nil || env.Request.Intent.Name == "" {
			return nil, ErrMalformed
		}
		slots := make(map[string]string, len(env.Request.Intent.Slots))
		for key, s := range env.Request.Intent.Slots {
			slots[key] = s.Value
		}
		return &Intent{base: b, Name: env.Request.Intent.Name, Slots: slots}, nil
	case "":
		return nil, ErrMalformed
	default:
		return &Other{base: b, Type: env.Request.Type}, nil
	}
}
