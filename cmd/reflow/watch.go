package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"cdr.dev/slog"
	"github.com/fsnotify/fsnotify"

	"oss.terrastruct.com/reflow/lib/log"
	"oss.terrastruct.com/reflow/lib/xmain"
	"oss.terrastruct.com/reflow/rflayouts"
)

type watcher struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	ms         *xmain.State
	opts       *rflayouts.Opts
	inputPath  string
	outputPath string
	preview    bool

	reflowCh chan struct{}

	fw *fsnotify.Watcher

	closeOnce sync.Once

	errMu sync.Mutex
	err   error
}

func newWatcher(ctx context.Context, ms *xmain.State, opts *rflayouts.Opts, inputPath, outputPath string, preview bool) (*watcher, error) {
	ctx, cancel := context.WithCancel(ctx)

	w := &watcher{
		ctx:    ctx,
		cancel: cancel,

		ms:         ms,
		opts:       opts,
		inputPath:  inputPath,
		outputPath: outputPath,
		preview:    preview,

		reflowCh: make(chan struct{}, 1),
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		cancel()
		return nil, err
	}
	w.fw = fw
	return w, nil
}

func (w *watcher) run() error {
	defer w.close()

	w.goFunc(w.watchLoop)
	w.goFunc(w.reflowLoop)

	w.wg.Wait()
	w.close()
	return w.err
}

func (w *watcher) close() {
	w.closeOnce.Do(func() {
		w.cancel()
		err := w.fw.Close()
		w.setErr(err)
	})
}

func (w *watcher) setErr(err error) {
	w.errMu.Lock()
	if w.err == nil && !errors.Is(err, context.Canceled) {
		w.err = err
	}
	w.errMu.Unlock()
}

func (w *watcher) goFunc(fn func(context.Context) error) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer w.cancel()

		err := fn(w.ctx)
		w.setErr(err)
	}()
}

// watchLoop requests a layout whenever the input changes. Bursts of events
// are coalesced, and the modification time is polled as a fallback for file
// systems that drop events.
func (w *watcher) watchLoop(ctx context.Context) error {
	lastModified, err := w.ensureAddWatch(ctx)
	if err != nil {
		return err
	}
	log.Info(ctx, fmt.Sprintf("reflowing %v...", w.inputPath))
	w.requestReflow()

	eatBurstTimer := time.NewTimer(0)
	<-eatBurstTimer.C
	pollTicker := time.NewTicker(time.Second * 10)
	defer pollTicker.Stop()

	for {
		select {
		case <-pollTicker.C:
			mt, err := w.ensureAddWatch(ctx)
			if err != nil {
				return err
			}
			if !mt.Equal(lastModified) {
				lastModified = mt
				w.requestReflow()
			}
		case ev, ok := <-w.fw.Events:
			if !ok {
				return errors.New("fsnotify watcher closed")
			}
			log.Debug(ctx, "received file system event", slog.F("event", ev.String()))
			mt, err := w.ensureAddWatch(ctx)
			if err != nil {
				return err
			}
			if ev.Op == fsnotify.Chmod {
				if mt.Equal(lastModified) {
					continue
				}
			}
			lastModified = mt
			eatBurstTimer.Reset(time.Millisecond * 32)
		case <-eatBurstTimer.C:
			log.Info(ctx, fmt.Sprintf("detected change in %v: reflowing...", w.inputPath))
			w.requestReflow()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return errors.New("fsnotify watcher closed")
			}
			log.Warn(ctx, "fsnotify error", slog.Error(err))
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *watcher) requestReflow() {
	select {
	case w.reflowCh <- struct{}{}:
	default:
	}
}

func (w *watcher) ensureAddWatch(ctx context.Context) (time.Time, error) {
	interval := time.Second
	tc := time.NewTimer(0)
	<-tc.C
	for {
		mt, err := w.addWatch()
		if err == nil {
			return mt, nil
		}
		log.Warn(ctx, fmt.Sprintf("failed to watch %q (retrying in %v)", w.inputPath, interval), slog.Error(err))

		tc.Reset(interval)
		select {
		case <-tc.C:
			if interval < time.Second*16 {
				interval *= 2
			}
		case <-ctx.Done():
			return time.Time{}, ctx.Err()
		}
	}
}

func (w *watcher) addWatch() (time.Time, error) {
	err := w.fw.Add(w.inputPath)
	if err != nil {
		return time.Time{}, err
	}
	d, err := os.Stat(w.inputPath)
	if err != nil {
		return time.Time{}, err
	}
	return d.ModTime(), nil
}

// reflowLoop runs one layout per request. Layout errors are logged and the
// loop keeps waiting for the next change.
func (w *watcher) reflowLoop(ctx context.Context) error {
	for {
		select {
		case <-w.reflowCh:
		case <-ctx.Done():
			return ctx.Err()
		}

		err := reflow(ctx, w.ms, w.opts, w.inputPath, w.outputPath, w.preview)
		if err != nil {
			log.Warn(ctx, fmt.Sprintf("failed to reflow %v", w.inputPath), slog.Error(err))
		}
	}
}
