package engine

import "github.com/sirupsen/logrus"

// Output is the hand-off point to the host audio subsystem. The engine
// tracks logical transport state only; decoding and actual output happen
// behind this interface.
type Output interface {
	Play(streamURL string)
	Pause()
	Resume()
	Stop()
	SetVolume(v float64)
}

// LogOutput is the default output: it logs hand-offs and produces no audio.
type LogOutput struct {
	Log *logrus.Entry
}

var _ Output = (*LogOutput)(nil)

func (o *LogOutput) Play(streamURL string) {
	o.Log.WithField("url", streamURL).Debug("audio output: play")
}

func (o *LogOutput) Pause()  { o.Log.Debug("audio output: pause") }
func (o *LogOutput) Resume() { o.Log.Debug("audio output: resume") }
func (o *LogOutput) Stop()   { o.Log.Debug("audio output: stop") }

func (o *LogOutput) SetVolume(v float64) {
	o.Log.WithField("volume", v).Debug("audio output: set volume")
}
