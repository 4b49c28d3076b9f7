package main

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/tributary/core"
)

func TestBackfillCommandFlags(t *testing.T) {
	app := &cli.App{
		Name: "tributary",
		Commands: []*cli.Command{
			{
				Name:   "backfill",
				Usage:  "Backfill one source over a date window",
				Action: backfillCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "source",
						Aliases:  []string{"s"},
						Usage:    "Source to backfill (tracker, meetings, wiki, chat)",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "days",
						Usage: "Days back from now when no explicit window is given",
						Value: 30,
					},
					&cli.StringFlag{
						Name:  "from",
						Usage: "Window start date (YYYY-MM-DD)",
					},
					&cli.StringFlag{
						Name:  "batch-id",
						Usage: "Batch id to run under (defaults to one derived from the window)",
					},
					&cli.IntFlag{
						Name:  "chunk-days",
						Usage: "Split the window into chunks of at most this many days",
					},
				},
			},
		},
	}

	t.Run("source is required", func(t *testing.T) {
		args := []string{"tributary", "backfill"}
		err := app.Run(args)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "source")
	})

	t.Run("days has default value of 30", func(t *testing.T) {
		cmd := app.Commands[0]
		var daysFlag *cli.IntFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.IntFlag); ok && f.Name == "days" {
				daysFlag = f
				break
			}
		}
		require.NotNil(t, daysFlag)
		assert.Equal(t, 30, daysFlag.Value)
	})

	t.Run("batch-id has no default value", func(t *testing.T) {
		cmd := app.Commands[0]
		var idFlag *cli.StringFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "batch-id" {
				idFlag = f
				break
			}
		}
		require.NotNil(t, idFlag)
		assert.Empty(t, idFlag.Value)
		assert.False(t, idFlag.Required)
	})

	t.Run("chunk-days defaults to single batch", func(t *testing.T) {
		cmd := app.Commands[0]
		var chunkFlag *cli.IntFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.IntFlag); ok && f.Name == "chunk-days" {
				chunkFlag = f
				break
			}
		}
		require.NotNil(t, chunkFlag)
		assert.Equal(t, 0, chunkFlag.Value)
	})
}

// runWindow parses the window flags through a throwaway app so the
// helper sees a real cli context.
func runWindow(t *testing.T, args ...string) (time.Time, time.Time, error) {
	t.Helper()

	var from, to time.Time
	var parseErr error
	app := &cli.App{
		Name: "test",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "days", Value: 30},
			&cli.StringFlag{Name: "from"},
			&cli.StringFlag{Name: "to"},
		},
		Action: func(c *cli.Context) error {
			from, to, parseErr = parseWindow(c)
			return nil
		},
	}

	require.NoError(t, app.Run(append([]string{"test"}, args...)))
	return from, to, parseErr
}

func TestParseWindow(t *testing.T) {
	t.Run("explicit window", func(t *testing.T) {
		from, to, err := runWindow(t, "--from", "2025-01-01", "--to", "2025-02-01")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), from)
		assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), to)
	})

	t.Run("days back from now", func(t *testing.T) {
		from, to, err := runWindow(t, "--days", "7")
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().UTC(), to, time.Minute)
		assert.Equal(t, to.AddDate(0, 0, -7), from)
	})

	t.Run("open end defaults to now", func(t *testing.T) {
		from, to, err := runWindow(t, "--from", "2025-01-01")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), from)
		assert.WithinDuration(t, time.Now().UTC(), to, time.Minute)
	})

	t.Run("invalid from date", func(t *testing.T) {
		_, _, err := runWindow(t, "--from", "01/02/2025")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid from date")
	})

	t.Run("invalid to date", func(t *testing.T) {
		_, _, err := runWindow(t, "--from", "2025-01-01", "--to", "yesterday")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid to date")
	})

	t.Run("inverted window", func(t *testing.T) {
		_, _, err := runWindow(t, "--from", "2025-02-01", "--to", "2025-01-01")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must precede")
	})

	t.Run("zero days", func(t *testing.T) {
		_, _, err := runWindow(t, "--days", "0")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "days")
	})
}

func TestDefaultBatchID(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	t.Run("encodes source and window", func(t *testing.T) {
		assert.Equal(t, "tracker-20250101-20250201", defaultBatchID(core.SourceTracker, from, to))
	})

	t.Run("stable across reruns", func(t *testing.T) {
		first := defaultBatchID(core.SourceWiki, from, to)
		second := defaultBatchID(core.SourceWiki, from, to)
		assert.Equal(t, first, second)
	})
}

func TestSnippet(t *testing.T) {
	t.Run("keeps short content", func(t *testing.T) {
		assert.Equal(t, "short text", snippet("short text", 160))
	})

	t.Run("first line only", func(t *testing.T) {
		assert.Equal(t, "first", snippet("first\nsecond\nthird", 160))
	})

	t.Run("truncates long lines", func(t *testing.T) {
		long := "aaaaaaaaaa"
		got := snippet(long, 4)
		assert.Equal(t, "aaaa...", got)
	})
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected slog.Level
		}{
			{"debug", slog.LevelDebug},
			{"info", slog.LevelInfo},
			{"warn", slog.LevelWarn},
			{"error", slog.LevelError},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: tc.input,
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", tc.input})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		testCases := []string{
			"DEBUG",
			"Info",
			"WaRn",
			"ERROR",
		}

		for _, tc := range testCases {
			t.Run(tc, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: "info",
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", tc})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}

		err := app.Run([]string{"test", "--log-level", "invalid"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("default log level is info", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				level := c.String("log-level")
				assert.Equal(t, "info", level)
				return nil
			},
		}

		err := app.Run([]string{"test"})
		require.NoError(t, err)
	})

	t.Run("log-level flag has alias -l", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "log-level",
					Aliases: []string{"l"},
					Value:   "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				level := c.String("log-level")
				assert.Equal(t, "debug", level)
				return nil
			},
		}

		err := app.Run([]string{"test", "-l", "debug"})
		require.NoError(t, err)
	})
}

func TestMain(m *testing.M) {
	// Run tests
	code := m.Run()
	os.Exit(code)
}
