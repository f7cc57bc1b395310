package console

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	rtsup "mcnotify/internal/runtime/supervisor"
	kit "mcnotify/internal/transport"
	logx "mcnotify/pkg/logx"
)

const maxLineBytes = 64 * 1024

// Input reads command lines from r and forwards them as updates.
type Input struct {
	r   io.Reader
	log logx.Logger

	runMu   sync.Mutex
	running bool
	sup     *rtsup.Supervisor
	eof     chan struct{}
	eofOnce sync.Once
}

var _ kit.Adapter = (*Input)(nil)

func NewInput(r io.Reader, log logx.Logger) *Input {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Input{r: r, log: log, eof: make(chan struct{})}
}

// EOF is closed when the reader is exhausted.
func (in *Input) EOF() <-chan struct{} { return in.eof }

func (in *Input) Start(ctx context.Context, out chan<- kit.Update) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if in.r == nil {
		return errors.New("console input: nil reader")
	}
	in.runMu.Lock()
	if in.running {
		in.runMu.Unlock()
		return nil
	}
	in.running = true
	in.sup = rtsup.New(ctx,
		rtsup.WithLogger(in.log),
		rtsup.WithCancelOnError(false),
	)
	sup := in.sup
	in.runMu.Unlock()

	sup.Go("console.read", func(c context.Context) error {
		return in.readLoop(c, out)
	})
	return nil
}

func (in *Input) readLoop(ctx context.Context, out chan<- kit.Update) error {
	sc := bufio.NewScanner(in.r)
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		select {
		case out <- kit.Update{Text: line, At: time.Now()}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	in.eofOnce.Do(func() { close(in.eof) })
	if err := sc.Err(); err != nil {
		return err
	}
	in.log.Info("console input closed")
	return nil
}

// Stop cancels the read loop. A reader blocked in Read (a terminal) cannot be
// interrupted, so Stop waits at most a short grace window.
func (in *Input) Stop(ctx context.Context) error {
	in.runMu.Lock()
	sup := in.sup
	in.sup = nil
	in.running = false
	in.runMu.Unlock()
	if sup == nil {
		return nil
	}
	sup.Cancel()

	grace := 500 * time.Millisecond
	if dl, ok := ctx.Deadline(); ok {
		if rem := time.Until(dl); rem > 0 && rem < grace {
			grace = rem
		}
	}
	wctx, cancel := context.WithTimeout(ctx, grace)
	defer cancel()
	if err := sup.Wait(wctx); err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		in.log.Warn("console input stop error", logx.Err(err))
	}
	return nil
}
