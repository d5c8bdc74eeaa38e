package cli

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"

	"github.com/dyike/CortexBrief/internal/notify"
)

// confirmDispatch shows the note and asks before it goes out.
func confirmDispatch(channels []string) func(msg notify.Message) (bool, error) {
	return func(msg notify.Message) (bool, error) {
		fmt.Println(msg.Note)
		fmt.Println()

		var confirmed bool
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Send %q to %v?", msg.Subject, channels),
			Default: true,
		}
		err := survey.AskOne(prompt, &confirmed)
		return confirmed, err
	}
}
