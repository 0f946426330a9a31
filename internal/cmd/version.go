package cmd

import (
	"fmt"

	"github.com/scenarium/worlder/internal/codegen/common"
)

type Version struct{}

// Run is called by Kong when the version command is executed.
func (v *Version) Run() error {
	version, err := common.GetVersion()
	if err != nil {
		return err
	}
	fmt.Println(version)
	return nil
}
