package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/minorchanges/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/minorchanges/internal/infrastructure/storage/minio"
	"github.com/turtacn/minorchanges/pkg/errors"
)

// NewLibrariesCmd creates the libraries command group.
func NewLibrariesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "libraries",
		Short: "Manage fragment and reaction libraries in object storage",
	}
	cmd.AddCommand(newLibrariesPushCmd())
	return cmd
}

func newLibrariesPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push <file> <s3://bucket/key>",
		Short: "Upload a library file",
		Long: "Uploads a fragment or reaction library so that engines can load it\n" +
			"by setting libraries.fragments, libraries.bivalent_fragments or\n" +
			"libraries.reactions to the s3:// location.",
		Example: `  minorchanges libraries push fragments.smi s3://libraries/fragments-2024.smi`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			path, uri := args[0], args[1]
			if _, _, err := minio.ParseURI(uri); err != nil {
				return err
			}
			file, err := os.Open(path)
			if err != nil {
				return errors.Wrap(err, errors.CodeNotFound, "cannot open library file").WithDetail(path)
			}
			defer file.Close()
			info, err := file.Stat()
			if err != nil {
				return errors.Wrap(err, errors.CodeStorageError, "cannot stat library file").WithDetail(path)
			}

			a := newApp(cc)
			defer a.Close()
			client, err := a.objectStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := minio.NewLibraryRepository(client, cc.Logger).Put(cmd.Context(), uri, file, info.Size()); err != nil {
				return err
			}
			cc.Logger.Info("library pushed", logging.String("file", path), logging.String("uri", uri))
			cmd.Printf("uploaded %s to %s (%d bytes)\n", path, uri, info.Size())
			return nil
		},
	}
}

//Personal.AI order the ending
