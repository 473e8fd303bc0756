package feedback

import (
	"context"
	"sync"
	"time"

	"github.com/mnoushir/portfolio-assistant/internal/notify"
	"github.com/mnoushir/portfolio-assistant/pkg/logging"
)

// Dispatcher sends notification emails off the request path. Each
// dispatch runs in its own goroutine with a bounded timeout; failures
// are logged, never surfaced to the submitter.
type Dispatcher struct {
	sender  notify.EmailSender
	timeout time.Duration
	logger  *logging.Logger
	wg      sync.WaitGroup
}

func NewDispatcher(sender notify.EmailSender, timeout time.Duration, logger *logging.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{sender: sender, timeout: timeout, logger: logger}
}

// Dispatch returns immediately; the send proceeds in the background.
func (d *Dispatcher) Dispatch(msg notify.EmailMessage) {
	if d.sender == nil {
		d.logger.Warn("no email sender configured, dropping notification", "subject", msg.Subject)
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.sender.Send(ctx, msg); err != nil {
			d.logger.Error("notification email failed", "subject", msg.Subject, "error", err)
			return
		}
		d.logger.Info("notification email sent", "to", msg.To, "subject", msg.Subject)
	}()
}

// Wait blocks until all in-flight dispatches finish. Used by shutdown
// and tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
