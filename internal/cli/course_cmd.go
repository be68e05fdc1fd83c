package cli

import (
	"fmt"
	"strings"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/spf13/cobra"
)

func newAssignCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <course-id> <driver-id>",
		Short: "Assigner une course à un chauffeur",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Open(cmd.Context())
			if err != nil {
				return err
			}

			driverID := args[1]
			course, err := p.Assign(cmd.Context(), operator, args[0], &driverID)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), StyleGreen.Render("Course assignée"))
			fmt.Fprint(cmd.OutOrStdout(), RenderCourse(course, p.Location()))
			return nil
		},
	}
}

func newUnassignCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unassign <course-id>",
		Short: "Retirer le chauffeur d'une course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Open(cmd.Context())
			if err != nil {
				return err
			}

			course, err := p.Assign(cmd.Context(), operator, args[0], nil)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), StyleYellow.Render("Course désassignée"))
			fmt.Fprint(cmd.OutOrStdout(), RenderCourse(course, p.Location()))
			return nil
		},
	}
}

func newStatusCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "status <course-id> <STATUS>",
		Short: "Changer le statut d'une course",
		Long:  "Statuts : EN_ATTENTE, ASSIGNEE, EN_COURS, TERMINEE, ANNULEE.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to := model.CourseStatus(strings.ToUpper(args[1]))
			if !to.IsValid() {
				return fmt.Errorf("unknown status %q", args[1])
			}

			p, err := app.Open(cmd.Context())
			if err != nil {
				return err
			}

			course, err := p.SetStatus(cmd.Context(), operator, args[0], to, force)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), RenderCourse(course, p.Location()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Autoriser la sortie d'un statut terminal")

	return cmd
}
