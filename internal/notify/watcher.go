package notify

import (
	"github.com/sirupsen/logrus"

	"github.com/remotune/remotune/internal/engine"
	"github.com/remotune/remotune/internal/media"
)

const trackNotificationTimeout = 5000 // ms

// Watcher shows a desktop notification whenever the current track changes.
// Each notification replaces the previous one.
type Watcher struct {
	notifier Notifier
	sub      *engine.Subscription
	eng      *engine.Engine
	log      *logrus.Entry

	lastID uint32
	done   chan struct{}
}

// Watch subscribes to the engine and starts forwarding track changes.
func Watch(eng *engine.Engine, notifier Notifier, log *logrus.Entry) *Watcher {
	w := &Watcher{
		notifier: notifier,
		sub:      eng.Subscribe(),
		eng:      eng,
		log:      log,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w
}

// Close stops the watcher and dismisses the last notification.
func (w *Watcher) Close() {
	close(w.done)
	w.eng.Unsubscribe(w.sub)
	if w.lastID != 0 {
		_ = w.notifier.Close(w.lastID)
	}
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case <-w.sub.Done:
			return
		case ev := <-w.sub.Events:
			if tc, ok := ev.(engine.TrackChanged); ok && tc.Track != nil {
				w.show(*tc.Track)
			}
		}
	}
}

func (w *Watcher) show(t media.Track) {
	body := t.Artist
	if t.Album != "" {
		body += " - " + t.Album
	}
	id, err := w.notifier.Notify(Notification{
		Title:      t.Title,
		Body:       body,
		Icon:       t.ArtworkURL,
		Timeout:    trackNotificationTimeout,
		ReplacesID: w.lastID,
		Urgency:    UrgencyLow,
	})
	if err != nil {
		w.log.WithError(err).Debug("notification failed")
		return
	}
	w.lastID = id
}
