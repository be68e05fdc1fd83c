package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newBoardCmd(app *App) *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Afficher la grille d'un jour",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Open(cmd.Context())
			if err != nil {
				return err
			}

			target := p.Today()
			if day != "" {
				target, err = time.ParseInLocation("2006-01-02", day, p.Location())
				if err != nil {
					return fmt.Errorf("invalid --day %q: expected YYYY-MM-DD", day)
				}
			}

			fmt.Fprint(cmd.OutOrStdout(), RenderBoard(p.Board(target, operator)))
			return nil
		},
	}

	cmd.Flags().StringVar(&day, "day", "", "Jour à afficher (YYYY-MM-DD), aujourd'hui par défaut")

	return cmd
}
