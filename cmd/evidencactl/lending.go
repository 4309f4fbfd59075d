package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/erazemk/evidenca/internal/model"
	"github.com/erazemk/evidenca/internal/report"
	"github.com/erazemk/evidenca/internal/store"
)

func (a *app) newCheckoutCommand() *cobra.Command {
	var dueArg string

	cmd := &cobra.Command{
		Use:   "checkout <book-id> <member-id>",
		Short: "Lend one copy of a book to a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID(args[0], "book")
			if err != nil {
				return err
			}
			memberID, err := parseID(args[1], "member")
			if err != nil {
				return err
			}
			today, err := a.today()
			if err != nil {
				return err
			}

			due := today.AddDays(a.cfg.LoanDays)
			if dueArg != "" {
				if due, err = model.ParseDate(dueArg); err != nil {
					return fmt.Errorf("invalid --due: %w", err)
				}
			}

			b, err := store.Checkout(cmd.Context(), a.database, bookID, memberID, due, today)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Borrowing %d: book %d lent to member %d, due %s\n",
				b.ID, b.BookID, b.MemberID, b.DueDate)
			return nil
		},
	}
	cmd.Flags().StringVar(&dueArg, "due", "", "due date (YYYY-MM-DD, default: today plus the loan period)")
	return cmd
}

func (a *app) newReturnCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "return <borrowing-id>",
		Short: "Record the return of a borrowed book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "borrowing")
			if err != nil {
				return err
			}
			today, err := a.today()
			if err != nil {
				return err
			}

			b, err := store.ReturnBook(cmd.Context(), a.database, id, today)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Borrowing %d returned on %s (%s)\n",
				b.ID, b.ReturnDate, b.Status(today))
			return nil
		},
	}
}

func (a *app) newOverdueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "List open borrowings past their due date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			today, err := a.today()
			if err != nil {
				return err
			}
			items, err := report.Overdue(cmd.Context(), a.database, today)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "BORROWING\tTITLE\tMEMBER\tEMAIL\tDUE\tDAYS OVERDUE")
			for _, it := range items {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\n",
					it.BorrowingID, it.Title, it.MemberName, it.MemberEmail, it.DueDate, it.DaysOverdue)
			}
			return tw.Flush()
		},
	}
}

func (a *app) newAvailabilityCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "availability",
		Short: "Show available and total copies per book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := report.AvailabilityReport(cmd.Context(), a.database)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "BOOK\tTITLE\tAUTHOR\tAVAILABLE\tTOTAL\t")
			for _, r := range rows {
				note := ""
				if r.OutOfStock {
					note = "out of stock"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\n",
					r.BookID, r.Title, r.Author, r.AvailableCopies, r.TotalCopies, note)
			}
			return tw.Flush()
		},
	}
}

func (a *app) newHistoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history <member-id>",
		Short: "Show a member's borrowing history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			memberID, err := parseID(args[0], "member")
			if err != nil {
				return err
			}
			today, err := a.today()
			if err != nil {
				return err
			}
			entries, err := report.BorrowingHistory(cmd.Context(), a.database, memberID, today)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "BORROWING\tTITLE\tBORROWED\tDUE\tRETURNED\tSTATUS")
			for _, e := range entries {
				returned := "-"
				if e.ReturnDate != nil {
					returned = e.ReturnDate.String()
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
					e.BorrowingID, e.Title, e.BorrowDate, e.DueDate, returned, e.Status)
			}
			return tw.Flush()
		},
	}
}
