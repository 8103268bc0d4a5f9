package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/example/wordbook/internal/excel"
	"github.com/example/wordbook/internal/playback"
	"github.com/example/wordbook/internal/vocab"
	"github.com/example/wordbook/pkg/models"
	"github.com/gosimple/slug"
	"github.com/spf13/cobra"
)

// filterFor selects one notebook, or every notebook when name is empty
func filterFor(name string) vocab.Filter {
	if strings.TrimSpace(name) == "" {
		return vocab.All()
	}
	return vocab.In(name)
}

func addCmd() *cobra.Command {
	var notebookName string

	cmd := &cobra.Command{
		Use:   "add [headword] [translation]",
		Short: "Add a word; the translation is looked up when omitted",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			translation := ""
			if len(args) > 1 {
				translation = args[1]
			}
			return withApp(cmd, func(a *app) error {
				rec, err := a.sess.AddWord(cmd.Context(), notebookName, args[0], translation)
				var enrichErr *vocab.EnrichmentError
				if errors.As(err, &enrichErr) {
					return fmt.Errorf("%v (pass the translation as a second argument)", err)
				}
				if err := warnSave(err); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s %s to %s\n", rec.Headword, rec.Phonetic, rec.Translation, rec.Notebook)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&notebookName, "notebook", "n", "", "notebook (default notebook when empty)")
	return cmd
}

func batchCmd() *cobra.Command {
	var notebookName string

	cmd := &cobra.Command{
		Use:   "batch [words...]",
		Short: "Add a comma or newline separated list of words; reads stdin when no words are given",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.Join(args, ",")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read word list: %v", err)
				}
				raw = string(data)
			}
			return withApp(cmd, func(a *app) error {
				res, err := a.sess.BatchAdd(cmd.Context(), notebookName, raw)
				if err := warnSave(err); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Added %d, skipped %d\n", res.Added, res.Skipped)
				if len(res.Invalid) > 0 {
					fmt.Fprintf(out, "Ignored: %s\n", strings.Join(res.Invalid, ", "))
				}
				if len(res.Failed) > 0 {
					fmt.Fprintf(out, "Lookups failed for: %s\n", strings.Join(res.Failed, ", "))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&notebookName, "notebook", "n", "", "notebook (default notebook when empty)")
	return cmd
}

func listCmd() *cobra.Command {
	var notebookName string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List words, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				words := a.sess.Words(filterFor(notebookName))
				if len(words) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No words yet.")
					return nil
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, rec := range words {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", rec.Headword, rec.Phonetic, rec.Translation, rec.Notebook, rec.CreatedDate)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVarP(&notebookName, "notebook", "n", "", "notebook (all when empty)")
	return cmd
}

func notebooksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notebooks",
		Short: "List notebooks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				for _, name := range a.sess.Notebooks() {
					st := a.sess.Stats(name)
					fmt.Fprintf(cmd.OutOrStdout(), "%s (%d)\n", name, st.NotebookCount)
				}
				return nil
			})
		},
	}
}

func renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename [old] [new]",
		Short: "Rename a notebook",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				n, err := a.sess.RenameNotebook(cmd.Context(), args[0], args[1])
				if err := warnSave(err); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Moved %d words to %s\n", n, args[1])
				return nil
			})
		},
	}
}

func deleteCmd() *cobra.Command {
	var notebookName string

	cmd := &cobra.Command{
		Use:   "delete [headword]",
		Short: "Delete a word from a notebook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				n, err := a.sess.DeleteWord(cmd.Context(), notebookName, args[0])
				if err := warnSave(err); err != nil {
					return err
				}
				if n == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%s not found\n", args[0])
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&notebookName, "notebook", "n", "", "notebook (default notebook when empty)")
	return cmd
}

func dropCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drop [notebook]",
		Short: "Delete a notebook and all its words",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				n, err := a.sess.DeleteNotebook(cmd.Context(), args[0])
				if err := warnSave(err); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d words\n", n)
				return nil
			})
		},
	}
}

func statsCmd() *cobra.Command {
	var notebookName string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show word counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				st := a.sess.Stats(notebookName)
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Cloud total: %d\n", st.CloudTotal)
				if n, err := remoteCount(cmd.Context(), a); err == nil && n != st.CloudTotal {
					fmt.Fprintf(out, "Remote rows: %d\n", n)
				}
				fmt.Fprintf(out, "Your words: %d in %d notebooks\n", st.OwnedTotal, st.Notebooks)
				name := notebookName
				if name == "" {
					name = a.sess.DefaultNotebook()
				}
				fmt.Fprintf(out, "%s: %d\n", name, st.NotebookCount)
				fmt.Fprintf(out, "%s: %d\n", a.sess.MistakeNotebook(), st.Mistakes)
				if st.Pending {
					fmt.Fprintln(out, "Unsaved changes pending")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&notebookName, "notebook", "n", "", "notebook to count")
	return cmd
}

func quizCmd() *cobra.Command {
	var (
		notebookName string
		rounds       int
	)

	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Multiple choice quiz; missed words go to the mistake notebook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				in := bufio.NewScanner(cmd.InOrStdin())
				out := cmd.OutOrStdout()
				for i := 0; i < rounds; i++ {
					q, err := a.sess.NextQuestion(filterFor(notebookName))
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "\n%d. %s %s\n", i+1, q.Target.Headword, q.Target.Phonetic)
					for j, opt := range q.Options {
						fmt.Fprintf(out, "  %d) %s\n", j+1, opt)
					}
					fmt.Fprint(out, "> ")
					if !in.Scan() {
						break
					}
					choice := ""
					if n, err := strconv.Atoi(strings.TrimSpace(in.Text())); err == nil && n >= 1 && n <= len(q.Options) {
						choice = q.Options[n-1]
					}
					res, err := a.sess.Answer(cmd.Context(), choice)
					if err := warnSave(err); err != nil {
						return err
					}
					printResult(out, res.Correct, res.Expected, res.Promoted)
				}
				sc := a.sess.QuizScore()
				fmt.Fprintf(out, "\nScore: %d/%d\n", sc.Correct, sc.Answered)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&notebookName, "notebook", "n", "", "notebook (all when empty)")
	cmd.Flags().IntVar(&rounds, "rounds", 10, "number of questions")
	return cmd
}

func spellCmd() *cobra.Command {
	var (
		notebookName string
		rounds       int
		audioDir     string
	)

	cmd := &cobra.Command{
		Use:   "spell",
		Short: "Spelling drill; missed words go to the mistake notebook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			run := withApp
			if audioDir != "" {
				run = func(cmd *cobra.Command, fn func(a *app) error) error {
					return withSpeechApp(cmd, audioDir, fn)
				}
			}
			return run(cmd, func(a *app) error {
				in := bufio.NewScanner(cmd.InOrStdin())
				out := cmd.OutOrStdout()
				for i := 0; i < rounds; i++ {
					ch, err := a.sess.NextSpelling(filterFor(notebookName))
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "\n%d. %s %s\n", i+1, ch.Target.Translation, ch.Target.Phonetic)
					if audioDir != "" {
						audio, err := a.sess.Speak(cmd.Context(), ch.Target.Headword, "en-US")
						if err != nil {
							fmt.Fprintf(os.Stderr, "warning: %v\n", err)
						} else if path := a.out.saveAudio(fmt.Sprintf("spell-%02d.mp3", i+1), audio); path != "" {
							fmt.Fprintf(out, "Listen: %s\n", path)
						}
					}
					fmt.Fprint(out, "> ")
					if !in.Scan() {
						break
					}
					res, err := a.sess.CheckSpelling(cmd.Context(), in.Text())
					if err := warnSave(err); err != nil {
						return err
					}
					printResult(out, res.Correct, res.Expected, res.Promoted)
				}
				sc := a.sess.SpellingScore()
				fmt.Fprintf(out, "\nScore: %d/%d\n", sc.Correct, sc.Answered)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&notebookName, "notebook", "n", "", "notebook (all when empty)")
	cmd.Flags().IntVar(&rounds, "rounds", 10, "number of words")
	cmd.Flags().StringVar(&audioDir, "audio-dir", "", "synthesize each headword into this directory")
	return cmd
}

func printResult(out io.Writer, correct bool, expected string, promoted bool) {
	if correct {
		fmt.Fprintln(out, "Correct!")
		return
	}
	fmt.Fprintf(out, "Wrong, the answer is %s\n", expected)
	if promoted {
		fmt.Fprintln(out, "Added to the mistake notebook")
	}
}

func cardsCmd() *cobra.Command {
	var notebookName string

	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Flip through flashcards: enter for next, p for previous, q to quit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				in := bufio.NewScanner(cmd.InOrStdin())
				out := cmd.OutOrStdout()
				card, err := a.sess.OpenCards(filterFor(notebookName))
				for err == nil {
					pos, total := a.sess.CardPosition()
					fmt.Fprintf(out, "\n(%d/%d) %s %s\n  %s\n> ", pos, total, card.Headword, card.Phonetic, card.Translation)
					if !in.Scan() {
						return nil
					}
					switch strings.ToLower(strings.TrimSpace(in.Text())) {
					case "q":
						return nil
					case "p":
						card, err = a.sess.PrevCard()
					default:
						card, err = a.sess.NextCard()
					}
				}
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&notebookName, "notebook", "n", "", "notebook (all when empty)")
	return cmd
}

func carouselCmd() *cobra.Command {
	var (
		notebookName string
		order        string
		audioDir     string
	)

	cmd := &cobra.Command{
		Use:   "carousel",
		Short: "Show and speak every word in turn; press enter or Ctrl+C to stop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := models.ParsePlaybackOrder(order)
			if err != nil {
				return err
			}
			run := withApp
			if audioDir != "" {
				run = func(cmd *cobra.Command, fn func(a *app) error) error {
					return withSpeechApp(cmd, audioDir, fn)
				}
			}
			return run(cmd, func(a *app) error {
				a.sess.SetPlaybackOrder(tokens)
				go func() {
					bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
					a.sess.StopCarousel()
				}()

				rep, err := a.sess.PlayCarousel(cmd.Context(), filterFor(notebookName))
				if err != nil {
					return err
				}
				state := "finished"
				if rep.Interrupted {
					state = "stopped"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\nCarousel %s after %d steps (%d words)\n", state, rep.Steps, rep.Words)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&notebookName, "notebook", "n", "", "notebook (all when empty)")
	cmd.Flags().StringVar(&order, "order", "HEADWORD,TRANSLATION", "playback order")
	cmd.Flags().StringVar(&audioDir, "audio-dir", "", "write the spoken audio of every step to this directory; silent when empty")
	return cmd
}

func compileCmd() *cobra.Command {
	var (
		notebookName string
		order        string
		output       string
		publish      bool
	)

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Render a notebook into one MP3 for offline listening",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := models.ParsePlaybackOrder(order)
			if err != nil {
				return err
			}
			return withSpeechApp(cmd, "", func(a *app) error {
				if a.speaker == nil {
					return fmt.Errorf("speech synthesis is not configured (set GOOGLE_CREDENTIALS_JSON)")
				}
				a.sess.SetPlaybackOrder(tokens)
				f := filterFor(notebookName)
				out := cmd.OutOrStdout()

				if publish {
					url, asset, err := a.sess.PublishAudio(cmd.Context(), f)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Published %d items (%s): %s\n", asset.Items, asset.Duration.Round(time.Second), url)
					return nil
				}

				asset, err := a.sess.CompileAudio(cmd.Context(), f)
				if err != nil {
					return err
				}
				if output == "" {
					output = strings.TrimSuffix(a.sess.ExportFileName(excel.FormatJSON, f), ".json") + ".mp3"
				}
				if err := os.WriteFile(output, asset.Audio, 0o644); err != nil {
					return fmt.Errorf("failed to write audio: %v", err)
				}
				fmt.Fprintf(out, "Wrote %d items (%s) to %s\n", asset.Items, asset.Duration.Round(time.Second), output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&notebookName, "notebook", "n", "", "notebook (all when empty)")
	cmd.Flags().StringVar(&order, "order", "HEADWORD,TRANSLATION", "playback order; empty speaks headwords only")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	cmd.Flags().BoolVar(&publish, "publish", false, "upload to Supabase Storage instead of writing a file")
	return cmd
}

func importCmd() *cobra.Command {
	var notebookName string

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import words from an XLSX or CSV file (headword, phonetic, translation, notebook)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open import file: %v", err)
			}
			defer file.Close()

			return withApp(cmd, func(a *app) error {
				sum, err := a.sess.Import(cmd.Context(), file, filepath.Ext(args[0]), notebookName)
				if err := warnSave(err); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Imported %d, skipped %d\n", sum.Added, sum.Skipped)
				for _, e := range sum.Errors {
					fmt.Fprintf(out, "  %s\n", e)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&notebookName, "notebook", "n", "", "notebook for rows that name none")
	return cmd
}

func exportCmd() *cobra.Command {
	var (
		notebookName string
		format       string
		output       string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download words as XLSX, CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := excel.ParseFormat(format)
			if err != nil {
				return err
			}
			return withApp(cmd, func(a *app) error {
				filter := filterFor(notebookName)
				if output == "" {
					output = a.sess.ExportFileName(f, filter)
				}
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create export file: %v", err)
				}
				if err := a.sess.Export(file, f, filter); err != nil {
					file.Close()
					return err
				}
				if err := file.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&notebookName, "notebook", "n", "", "notebook (all when empty)")
	cmd.Flags().StringVarP(&format, "format", "f", "xlsx", "xlsx, csv or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	return cmd
}

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Save pending changes and reload the table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				if err := a.sess.Reload(cmd.Context()); err != nil {
					return err
				}
				st := a.sess.Stats("")
				fmt.Fprintf(cmd.OutOrStdout(), "Synced: %d rows in the table, %d yours\n", st.CloudTotal, st.OwnedTotal)
				return nil
			})
		},
	}
}

// console prints carousel steps and keeps their audio when audioDir is set
type console struct {
	out      io.Writer
	audioDir string
}

func newConsole(out io.Writer, audioDir string) *console {
	return &console{out: out, audioDir: audioDir}
}

func (c *console) Show(step playback.Step) {
	switch step.Token {
	case models.TokenHeadword:
		fmt.Fprintf(c.out, "\n[%d] %s %s\n", step.Item, step.Text, step.Word.Phonetic)
	default:
		fmt.Fprintf(c.out, "    %s\n", step.Text)
	}
}

func (c *console) Speak(step playback.Step, audio []byte) {
	name := fmt.Sprintf("%03d-%s-%s.mp3", step.Index, slug.Make(step.Word.Headword), strings.ToLower(string(step.Token)))
	c.saveAudio(name, audio)
}

// saveAudio writes audio under audioDir and returns its path, or "" when nothing was written
func (c *console) saveAudio(name string, audio []byte) string {
	if c.audioDir == "" || len(audio) == 0 {
		return ""
	}
	path := filepath.Join(c.audioDir, name)
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		log.Printf("Could not save audio: %v", err)
		return ""
	}
	return path
}
