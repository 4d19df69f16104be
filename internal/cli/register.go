package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dtroode/confreg-server/internal/intake"
	"github.com/dtroode/confreg-server/internal/model"
	"github.com/dtroode/confreg-server/internal/validation"
)

func newRegisterCommand(a *app) *cobra.Command {
	var regType string
	values := map[validation.Field]*string{}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register for the conference",
		Example: `  confreg register --type student --name "Ada Lovelace" --email ada@example.com
  confreg register --type professional --name "Bo" --email bo@x.com --company Acme`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl := intake.New(a.client())

			if err := ctrl.SelectType(model.RegistrationType(regType)); err != nil {
				return err
			}
			for _, f := range validation.Fields {
				if v := *values[f]; v != "" {
					if err := ctrl.Edit(string(f), v); err != nil {
						return err
					}
				}
			}

			err := ctrl.Submit(cmd.Context())
			snap := ctrl.Snapshot()
			if err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Registration successful")
				return nil
			}

			errOut := cmd.ErrOrStderr()
			for _, f := range validation.Fields {
				if st := snap.Fields[f]; st.Error != "" {
					fmt.Fprintf(errOut, "%s: %s\n", f, st.Error)
				}
			}
			if snap.Notice != "" {
				fmt.Fprintln(errOut, snap.Notice)
			}
			if errors.Is(err, intake.ErrBlocked) || errors.Is(err, intake.ErrRejected) {
				return errors.New("registration not submitted")
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&regType, "type", "t", "", "registration type: student or professional")
	for _, f := range validation.Fields {
		values[f] = cmd.Flags().String(string(f), "", fmt.Sprintf("%s field", f))
	}
	_ = cmd.MarkFlagRequired("type")
	return cmd
}
