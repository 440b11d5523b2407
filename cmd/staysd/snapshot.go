package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"carestay-backend/internal/store"
)

// ExportCmd writes the persisted state as JSON. An empty slot exports the
// seeded room inventory without persisting it.
type ExportCmd struct {
	Output string `short:"o" help:"Output file (default stdout)" type:"path"`
}

func (cmd *ExportCmd) Run(cli *CLI) error {
	ctx := context.Background()
	a, err := newApp(ctx, cli.Config, false)
	if err != nil {
		return err
	}
	defer a.Close()

	st := store.New(store.WithLogger(a.log.Named("store")))
	if _, err := st.Load(ctx, a.slot); err != nil {
		return err
	}
	payload, err := store.EncodeSnapshot(st.Snapshot())
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if cmd.Output != "" {
		f, err := os.Create(cmd.Output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", cmd.Output, err)
		}
		defer f.Close()
		out = f
	}
	if _, err := out.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// ImportCmd replaces the persisted state with the contents of a JSON file.
// Do not run it against a slot that a live server is flushing to.
type ImportCmd struct {
	File string `arg:"" help:"Snapshot JSON file" type:"existingfile"`
}

func (cmd *ImportCmd) Run(cli *CLI) error {
	ctx := context.Background()
	a, err := newApp(ctx, cli.Config, false)
	if err != nil {
		return err
	}
	defer a.Close()

	payload, err := os.ReadFile(cmd.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cmd.File, err)
	}
	snap, err := store.DecodeSnapshot(payload)
	if err != nil {
		return err
	}

	st := store.New(store.WithLogger(a.log.Named("store")))
	st.Restore(snap)
	if err := st.Save(ctx, a.slot); err != nil {
		return err
	}
	a.log.Info("snapshot imported",
		zap.String("file", cmd.File),
		zap.Int("rooms", len(snap.Rooms)),
		zap.Int("residents", len(snap.Residents)),
		zap.Int("stays", len(snap.Stays)))
	return nil
}
