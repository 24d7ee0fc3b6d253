package system

import (
	"fmt"

	"github.com/julianstephens/snaprise/internal/cli"
	"github.com/julianstephens/snaprise/internal/constants"
	"github.com/julianstephens/snaprise/internal/riddles"
)

type RiddleCmd struct {
	Difficulty string `short:"d" enum:",easy,medium,hard" default:"" help:"Only riddles of this difficulty (easy|medium|hard)."`
	Count      int    `short:"n" default:"1" help:"How many distinct riddles to print."`
	Answers    bool   `short:"a" help:"Print the answers too."`
}

func (c *RiddleCmd) Validate() error {
	if c.Count < 1 {
		return fmt.Errorf("count must be at least 1")
	}
	return nil
}

func (c *RiddleCmd) Run(ctx *cli.Context) error {
	bank, err := ctx.RiddleBank()
	if err != nil {
		return err
	}

	for i, r := range bank.PickMany(c.Count, constants.Difficulty(c.Difficulty)) {
		ctx.Printf("%d. [%s] %s\n", i+1, r.Difficulty, r.Question)
		if c.Answers {
			ctx.Printf("   Answer: %s\n", r.Answer)
		} else {
			ctx.Printf("   Hint: %s\n", riddles.Hint(r))
		}
	}
	return nil
}
