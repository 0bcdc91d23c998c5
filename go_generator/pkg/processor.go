package pkg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/garodriguezlp/local-obs-sandbox/loggen/common"
	"github.com/garodriguezlp/local-obs-sandbox/loggen/go_generator/logdb"
)

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Generator drives entry synthesis for one run in one of the three modes
type Generator struct {
	RunID       string // tags the diagnostics of one run
	Config      Config
	Synthesizer *Synthesizer
	DB          logdb.LogDB
	Out         io.Writer // progress lines
	Stats       *common.Stats
	Sleep       SleepFunc
}

// NewGenerator creates a Generator writing progress to out (stdout when nil)
func NewGenerator(config Config, db logdb.LogDB, out io.Writer) *Generator {
	if out == nil {
		out = os.Stdout
	}

	return &Generator{
		RunID:       uuid.NewString(),
		Config:      config,
		Synthesizer: NewSynthesizer(config.SynthesizerConfig()),
		DB:          db,
		Out:         out,
		Stats:       common.NewStats(),
		Sleep:       sleepContext,
	}
}

// sleepContext is a context-aware time.Sleep
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RunGenerator initializes the destinations, runs mode and closes the destinations
func (g *Generator) RunGenerator(ctx context.Context, mode string) error {
	if err := g.DB.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize output: %w", err)
	}
	common.LogDebug("generator", "Run started", logrus.Fields{"run_id": g.RunID, "mode": mode, "outputs": g.DB.Name()})

	var runErr error
	switch mode {
	case common.ModeBatch:
		runErr = g.RunBatch(ctx, g.Config.Count)
	case common.ModeContinuous:
		runErr = g.RunContinuous(ctx)
	case common.ModeBurst:
		runErr = g.RunBurst(ctx, g.Config.Bursts, g.Config.PerBurst)
	default:
		runErr = fmt.Errorf("unknown mode: %s", mode)
	}

	// Close flushes buffered remote batches even after an interrupt
	closeErr := g.handleWriteError(g.DB.Close(), 0)

	common.LogInfo("generator", "Run finished", logrus.Fields{
		"run_id":         g.RunID,
		"mode":           mode,
		"entries":        g.Stats.Total(),
		"failed_writes":  atomic.LoadInt64(&g.Stats.FailedWrites),
		"success_writes": atomic.LoadInt64(&g.Stats.SuccessWrites),
		"summary":        g.Stats.Summary(),
	})

	if runErr != nil {
		return runErr
	}
	return closeErr
}

// RunBatch writes count entries as fast as possible
func (g *Generator) RunBatch(ctx context.Context, count int) error {
	if count < 0 {
		return fmt.Errorf("count must be non-negative, got %d", count)
	}

	fmt.Fprintf(g.Out, "Generating %d log entries to %s\n", count, g.Config.Target)

	every := g.Config.ProgressEvery
	for i := 1; i <= count; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("batch interrupted after %d/%d logs: %w", i-1, count, err)
		}
		if err := g.emit(); err != nil {
			return err
		}
		if every > 0 && i%every == 0 {
			fmt.Fprintf(g.Out, "Generated %d/%d logs\n", i, count)
		}
	}

	fmt.Fprintf(g.Out, "\nCompleted! Generated %d logs to %s\n", count, g.Config.Target)
	return nil
}

// RunContinuous writes entries with a random delay until ctx is cancelled.
// Cancellation is a clean stop.
func (g *Generator) RunContinuous(ctx context.Context) error {
	fmt.Fprintf(g.Out, "Generating logs continuously to %s\n", g.Config.Target)
	fmt.Fprintln(g.Out, "Press Ctrl+C to stop")

	minDelay, maxDelay := g.Config.DelayRange()
	for ctx.Err() == nil {
		if err := g.emit(); err != nil {
			return err
		}
		if err := g.Sleep(ctx, g.Synthesizer.Delay(minDelay, maxDelay)); err != nil {
			break
		}
	}

	fmt.Fprint(g.Out, "\n\nStopped log generation\n")
	return nil
}

// RunBurst writes bursts groups of perBurst entries separated by a pause
func (g *Generator) RunBurst(ctx context.Context, bursts, perBurst int) error {
	if bursts < 0 || perBurst < 0 {
		return fmt.Errorf("bursts and per-burst must be non-negative, got %d and %d", bursts, perBurst)
	}

	fmt.Fprintf(g.Out, "Generating %d bursts of %d logs each\n", bursts, perBurst)

	delay := g.Config.BurstDelay()
	pause := g.Config.BurstPause()
	for b := 1; b <= bursts; b++ {
		fmt.Fprintf(g.Out, "\nBurst %d/%d...\n", b, bursts)

		for i := 0; i < perBurst; i++ {
			if err := g.emit(); err != nil {
				return err
			}
			if err := g.Sleep(ctx, delay); err != nil {
				return fmt.Errorf("burst %d/%d interrupted: %w", b, bursts, err)
			}
		}

		if b < bursts {
			fmt.Fprintf(g.Out, "Waiting %s before next burst...\n", formatPause(pause))
			if err := g.Sleep(ctx, pause); err != nil {
				return fmt.Errorf("burst pause interrupted: %w", err)
			}
		}
	}

	fmt.Fprintf(g.Out, "\nCompleted! Generated %d logs in %d bursts\n", bursts*perBurst, bursts)
	return nil
}

// emit synthesizes one entry and writes it to every destination
func (g *Generator) emit() error {
	entry := g.Synthesizer.GenerateEntry()
	recordEntry(g.Stats, entry)

	err := g.DB.SendLogs([]logdb.LogEntry{entry})
	if err == nil {
		g.Stats.IncrementSuccessWrites()
		return nil
	}
	g.Stats.IncrementFailedWrites()
	return g.handleWriteError(err, 1)
}

// handleWriteError logs non-fatal destination errors and returns the fatal ones
func (g *Generator) handleWriteError(err error, entries int) error {
	if err == nil {
		return nil
	}

	destErrs := logdb.DestinationErrors(err)
	if len(destErrs) == 0 {
		// A single destination that is not wrapped in a MultiDB
		if g.Config.isFatal(g.DB.Name()) {
			return fmt.Errorf("failed to write log entry: %w", err)
		}
		common.LogDestinationError(g.DB.Name(), entries, err)
		return nil
	}

	var fatal []error
	for _, destErr := range destErrs {
		if g.Config.isFatal(destErr.Destination) {
			fatal = append(fatal, destErr)
			continue
		}
		common.LogDestinationError(destErr.Destination, entries, destErr.Err)
	}
	if len(fatal) > 0 {
		return fmt.Errorf("failed to write log entry: %w", errors.Join(fatal...))
	}
	return nil
}

// formatPause renders whole seconds the way the progress lines expect
func formatPause(d time.Duration) string {
	if d > 0 && d%time.Second == 0 {
		seconds := int(d / time.Second)
		if seconds == 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", seconds)
	}
	return d.String()
}
