package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iudanet/gophsync/internal/models"
)

func init() {
	registerCmd.Flags().String("password", "", "Password (prompted when empty)")
	loginCmd.Flags().String("password", "", "Password (prompted when empty)")
	addCmd.Flags().Bool("force", false, "Succeed without a change if the entity exists")
	removeCmd.Flags().Bool("force", false, "Remove regardless of the entity revision")
	setCmd.Flags().Bool("force", false, "Set regardless of the field revision")

	rootCmd.AddCommand(
		versionCmd,
		registerCmd,
		loginCmd,
		logoutCmd,
		statusCmd,
		modelsCmd,
		getCmd,
		addCmd,
		removeCmd,
		setCmd,
		syncCmd,
		forgetCmd,
	)
}

func optionalArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

var (
	versionCmd = &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"standalone": "true"},
		Run: func(cmd *cobra.Command, args []string) {
			printVersion()
		},
	}

	registerCmd = &cobra.Command{
		Use:   "register [actor]",
		Short: "Register a new actor and log in",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return current.cli.Register(cmd.Context(), models.ID(optionalArg(args)), viper.GetString("password"))
		},
	}

	loginCmd = &cobra.Command{
		Use:   "login [actor]",
		Short: "Log in to the server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return current.cli.Login(cmd.Context(), models.ID(optionalArg(args)), viper.GetString("password"))
		},
	}

	logoutCmd = &cobra.Command{
		Use:   "logout",
		Short: "Log out, local replicas are kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return current.cli.Logout(cmd.Context())
		},
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show the session and local replicas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return current.cli.Status(cmd.Context())
		},
	}

	modelsCmd = &cobra.Command{
		Use:   "models",
		Short: "List models of the repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return current.cli.Models(cmd.Context())
		},
	}

	getCmd = &cobra.Command{
		Use:     "get ADDRESS",
		Short:   "Show a model, an object or a field",
		Example: "  gophsync get notes\n  gophsync get /repo/notes/o1/title",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return current.cli.Get(cmd.Context(), args[0])
		},
	}

	addCmd = &cobra.Command{
		Use:     "add PARENT [ID]",
		Short:   "Add a model, an object or a field (random id when omitted)",
		Example: "  gophsync add /repo todo\n  gophsync add notes\n  gophsync add notes/o1 title",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			return current.cli.Add(cmd.Context(), args[0], optionalArg(args[1:]), force)
		},
	}

	removeCmd = &cobra.Command{
		Use:   "remove ADDRESS",
		Short: "Remove a model, an object or a field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			return current.cli.Remove(cmd.Context(), args[0], force)
		},
	}

	setCmd = &cobra.Command{
		Use:     "set FIELD VALUE",
		Short:   "Set a field value, creating the field when missing",
		Example: "  gophsync set notes/o1/title 'Shopping list'",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			return current.cli.Set(cmd.Context(), args[0], args[1], force)
		},
	}

	syncCmd = &cobra.Command{
		Use:   "sync [MODEL]",
		Short: "Synchronize one or all local replicas with the server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return current.cli.Sync(cmd.Context(), optionalArg(args))
		},
	}

	forgetCmd = &cobra.Command{
		Use:   "forget MODEL",
		Short: "Drop the local replica of a model with its unsynced changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return current.cli.Forget(cmd.Context(), args[0])
		},
	}
)
