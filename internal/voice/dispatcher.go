package voice

import (
	"context"
	"errors"
	"fmt"

	"Care_Community/internal/model"
	"Care_Community/internal/pkg"

	"go.uber.org/zap"
)

const (
	SpeechLaunch        = "How can I assist you today?"
	SpeechFallback      = "I'm not sure what you mean. How can I assist you today?"
	SpeechTaskCreated   = "Task '%s' has been created. We'll assist you shortly."
	SpeechMissingPIN    = "PIN code is required to register the device. Please provide a valid PIN."
	SpeechUnknownPIN    = "No community found with the provided PIN code '%s'. Please try again."
	SpeechUnknownRoom   = "Room '%s' not found in the community. Please provide a valid room number."
	SpeechAlreadyPaired = "This device is already registered to a room. If you need to change the room, please contact support."
	SpeechPaired        = "Device registered successfully for Room %s."
	SpeechPairFailed    = "Sorry, I couldn't register this device right now. Please try again later."
)

// Response 平台要求的应答结构
type Response struct {
	Version  string `json:"version"`
	Response struct {
		OutputSpeech struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"outputSpeech"`
		ShouldEndSession bool `json:"shouldEndSession"`
	} `json:"response"`
}

func Say(text string, end bool) *Response {
	r := &Response{Version: "1.0"}
	r.Response.OutputSpeech.Type = "PlainText"
	r.Response.OutputSpeech.Text = text
	r.Response.ShouldEndSession = end
	return r
}

type Pairer interface {
	Pair(ctx context.Context, deviceID, pin, roomNumber string) (*model.AlexaDevice, error)
}

type TaskIntake interface {
	IntakeDevice(ctx context.Context, deviceID, description string) (*model.Task, error)
}

// Dispatcher 无状态，每个请求独立路由
type Dispatcher struct {
	pairer Pairer
	tasks  TaskIntake
	log    *zap.Logger
}

func NewDispatcher(pairer Pairer, tasks TaskIntake, log *zap.Logger) *Dispatcher {
	return &Dispatcher{pairer: pairer, tasks: tasks, log: log}
}

// Handle 从不返回错误；所有失败都转成口语提示
func (d *Dispatcher) Handle(ctx context.Context, env *Envelope) *Response {
	ev, err := Parse(env)
	if err != nil {
		d.log.Debug("voice payload rejected", zap.Error(err))
		return Say(SpeechFallback, false)
	}

	switch e := ev.(type) {
	case *Launch:
		return Say(SpeechLaunch, false)
	case *Intent:
		switch e.Name {
		case IntentRequestHelp:
			return d.requestHelp(ctx, e)
		case IntentRegisterDevice:
			return d.registerDevice(ctx, e)
		}
	}
	return Say(SpeechFallback, false)
}

func (d *Dispatcher) requestHelp(ctx context.Context, e *Intent) *Response {
	text, ok := e.Slot(SlotTask)
	if !ok || e.DeviceID() == "" {
		return Say(SpeechFallback, false)
	}
	task, err := d.tasks.IntakeDevice(ctx, e.DeviceID(), text)
	if err != nil {
		if !errors.Is(err, pkg.ErrDeviceNotPaired) {
			d.log.Warn("voice task intake failed", zap.String("device_id", e.DeviceID()), zap.Error(err))
		}
		return Say(SpeechFallback, false)
	}
	return Say(fmt.Sprintf(SpeechTaskCreated, task.Title), false)
}

func (d *Dispatcher) registerDevice(ctx context.Context, e *Intent) *Response {
	pin, _ := e.Slot(SlotPIN)
	room, _ := e.Slot(SlotRoom)

	_, err := d.pairer.Pair(ctx, e.DeviceID(), pin, room)
	switch {
	case err == nil:
		return Say(fmt.Sprintf(SpeechPaired, room), true)
	case errors.Is(err, pkg.ErrMissingCredential):
		return Say(SpeechMissingPIN, false)
	case errors.Is(err, pkg.ErrUnknownCommunity):
		return Say(fmt.Sprintf(SpeechUnknownPIN, pin), false)
	case errors.Is(err, pkg.ErrUnknownRoom):
		return Say(fmt.Sprintf(SpeechUnknownRoom, room), false)
	case errors.Is(err, pkg.ErrAlreadyPaired):
		return Say(SpeechAlreadyPaired, false)
	case errors.Is(err, pkg.ErrMissingDeviceID):
		return Say(SpeechFallback, false)
	default:
		d.log.Error("voice pairing failed", zap.String("device_id", e.DeviceID()), zap.Error(err))
		return Say(SpeechPairFailed, false)
	}
}
