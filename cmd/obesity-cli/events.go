package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/synaptica-ai/obesity-check/pkg/common/config"
	"github.com/synaptica-ai/obesity-check/pkg/common/kafka"
	"github.com/synaptica-ai/obesity-check/pkg/common/models"
	"github.com/synaptica-ai/obesity-check/pkg/screening"
)

// labelTally counts predicted labels per model version.
type labelTally struct {
	mu     sync.Mutex
	counts map[string]map[string]int
}

func newLabelTally() *labelTally {
	return &labelTally{counts: make(map[string]map[string]int)}
}

func (t *labelTally) add(ev models.Event) error {
	if ev.Type != screening.EventAssessmentCompleted {
		return nil
	}
	label, _ := ev.Data["label"].(string)
	version, _ := ev.Data["model_version"].(string)
	if label == "" {
		return fmt.Errorf("event %s has no label", ev.ID)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.counts[version] == nil {
		t.counts[version] = make(map[string]int)
	}
	t.counts[version][label]++
	return nil
}

func (t *labelTally) write(out io.Writer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	versions := make([]string, 0, len(t.counts))
	for v := range t.counts {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	for _, v := range versions {
		fmt.Fprintf(out, "%s\n", v)
		labels := make([]string, 0, len(t.counts[v]))
		for l := range t.counts[v] {
			labels = append(labels, l)
		}
		sort.Strings(labels)
		for _, l := range labels {
			fmt.Fprintf(out, "    %-22s %d\n", l, t.counts[v][l])
		}
	}
}

func newEventsCmd() *cobra.Command {
	cfg := config.Load()
	var (
		brokers []string
		topic   string
		group   string
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Follow assessment events and print the label mix on exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(brokers) == 0 {
				return errors.New("no kafka brokers configured; set --brokers or KAFKA_BROKERS")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			consumer := kafka.NewConsumer(brokers, topic, group)
			defer consumer.Close()

			tally := newLabelTally()
			out := cmd.OutOrStdout()
			err := consumer.Consume(ctx, func(ctx context.Context, ev models.Event) error {
				if err := tally.add(ev); err != nil {
					return err
				}
				fmt.Fprintf(out, "%s %s %v\n", ev.Timestamp.Format("15:04:05"), ev.Data["label"], ev.Data["model_version"])
				return nil
			})
			tally.write(out)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringSliceVar(&brokers, "brokers", cfg.KafkaBrokers, "kafka brokers")
	cmd.Flags().StringVar(&topic, "topic", cfg.KafkaTopic, "assessment event topic")
	cmd.Flags().StringVar(&group, "group", "obesity-cli", "consumer group")
	return cmd
}
