package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/evidenca/internal/store"
)

func (a *app) newEnrollCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "enroll <student-id> <course-id>",
		Short: "Enroll a student in a course",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			studentID, err := parseID(args[0], "student")
			if err != nil {
				return err
			}
			courseID, err := parseID(args[1], "course")
			if err != nil {
				return err
			}

			e, err := store.Enroll(cmd.Context(), a.database, studentID, courseID, time.Time{})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Enrollment %d: student %d in course %d\n",
				e.ID, e.StudentID, e.CourseID)
			return nil
		},
	}
}

func (a *app) newGradeCommand() *cobra.Command {
	var clearGrade bool

	cmd := &cobra.Command{
		Use:   "grade <enrollment-id> [grade]",
		Short: "Assign or clear the grade of an enrollment",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "enrollment")
			if err != nil {
				return err
			}

			switch {
			case clearGrade && len(args) == 2:
				return errors.New("--clear does not take a grade")
			case clearGrade:
				if _, err := store.ClearGrade(cmd.Context(), a.database, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Enrollment %d: grade cleared\n", id)
			case len(args) == 2:
				e, err := store.AssignGrade(cmd.Context(), a.database, id, args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Enrollment %d: grade %s\n", id, *e.Grade)
			default:
				return errors.New("a grade or --clear is required")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearGrade, "clear", false, "remove the grade")
	return cmd
}
