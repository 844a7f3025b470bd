package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"flowq/internal/config"
	"flowq/internal/queue"
)

func newEnqueueCommand(ctx *commandContext) *cobra.Command {
	var payloadJSON string

	cmd := &cobra.Command{
		Use:   "enqueue <flow>",
		Short: "Add a pending record to a flow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload map[string]any
			if trimmed := strings.TrimSpace(payloadJSON); trimmed != "" {
				if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
					return fmt.Errorf("parse payload: %w", err)
				}
			}

			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				record, err := store.Enqueue(cmd.Context(), args[0], payload)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Enqueued record %d on flow %s\n", record.ID, record.FlowName)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&payloadJSON, "payload", "p", "", "Record payload as a JSON object")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var flowName string
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue records",
		RunE: func(cmd *cobra.Command, args []string) error {
			var statuses []queue.Status
			for _, value := range listStatuses {
				status, ok := queue.ParseStatus(value)
				if !ok {
					return fmt.Errorf("unknown status %q", value)
				}
				statuses = append(statuses, status)
			}

			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				records, err := store.List(cmd.Context(), flowName, statuses...)
				if err != nil {
					return err
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}

				rows := make([][]string, 0, len(records))
				for _, record := range records {
					rows = append(rows, []string{
						strconv.FormatInt(record.ID, 10),
						record.FlowName,
						string(record.Status),
						record.ClaimantID,
						strconv.Itoa(record.RetryCount),
						record.CreatedAt.Local().Format(time.RFC3339),
					})
				}
				out := renderTable(recordColumns, rows)
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&flowName, "flow", "f", "", "Filter by flow name")
	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by record status (repeatable)")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one queue record in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("record id must be an integer, got %q", args[0])
			}

			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				record, err := store.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if record == nil {
					return fmt.Errorf("record %d not found", id)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:            %d\n", record.ID)
				fmt.Fprintf(out, "Flow:          %s\n", record.FlowName)
				fmt.Fprintf(out, "Status:        %s\n", record.Status)
				fmt.Fprintf(out, "Claimant:      %s\n", valueOrDash(record.ClaimantID))
				fmt.Fprintf(out, "Claimed at:    %s\n", formatTimePtr(record.ClaimedAt))
				fmt.Fprintf(out, "Completed at:  %s\n", formatTimePtr(record.CompletedAt))
				fmt.Fprintf(out, "Error:         %s\n", valueOrDash(record.ErrorMessage))
				fmt.Fprintf(out, "Retries:       %d (ceiling %d)\n", record.RetryCount, cfg.Queue.MaxRetries)
				fmt.Fprintf(out, "Reclaims:      %d\n", record.ReclaimCount)
				fmt.Fprintf(out, "Created:       %s\n", record.CreatedAt.Local().Format(time.RFC3339))
				fmt.Fprintf(out, "Updated:       %s\n", record.UpdatedAt.Local().Format(time.RFC3339))
				if len(record.Payload) > 0 {
					pretty, err := json.MarshalIndent(record.Payload, "", "  ")
					if err != nil {
						return fmt.Errorf("render payload: %w", err)
					}
					fmt.Fprintf(out, "Payload:\n%s\n", pretty)
				}
				return nil
			})
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var flowName string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show record counts per flow and status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				counts, err := store.Stats(cmd.Context(), flowName)
				if err != nil {
					return err
				}
				if len(counts) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}

				rows := make([][]string, 0, len(counts))
				for _, entry := range counts {
					rows = append(rows, []string{
						entry.FlowName,
						string(entry.Status),
						strconv.Itoa(entry.Count),
					})
				}
				out := renderTable(statusColumns, rows)
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&flowName, "flow", "f", "", "Filter by flow name")
	return cmd
}

func newReclaimCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reclaim",
		Short: "Return expired-lease records to pending",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				reclaimed, err := store.ReclaimOrphans(cmd.Context(), cfg.Lease())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reclaimed %d orphaned record(s)\n", reclaimed)
				return nil
			})
		},
	}
}

func newRequeueCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "requeue",
		Short: "Return retryable failed records to pending",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				requeued, err := store.RequeueFailed(cmd.Context(), cfg.Queue.MaxRetries)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Requeued %d failed record(s)\n", requeued)
				return nil
			})
		},
	}
}

func valueOrDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatTimePtr(value *time.Time) string {
	if value == nil {
		return "-"
	}
	return value.Local().Format(time.RFC3339)
}
