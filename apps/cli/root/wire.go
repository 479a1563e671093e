package root

import (
	"github.com/inkpress/inkpress/apps/cli/cmd/auth"
	"github.com/inkpress/inkpress/apps/cli/cmd/bootstrap"
)

func init() {
	Root().AddCommand(auth.Command())
	Root().AddCommand(bootstrap.Command())
}
