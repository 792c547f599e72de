package feed

type pullStep struct {
	min, max float64
	message  string
}

var pullSteps = []pullStep{
	{0, 25, "Keep Pulling."},
	{26, 40, "Keep Pulling..."},
	{41, 60, "Keep Pulling......"},
	{61, 80, "Keep Pulling........."},
	{81, 100, "Keep Pulling............"},
	{101, 120, "Keep Pulling..............."},
	{121, 150, "Keep Pulling.................."},
}

const (
	pullDefaultMessage = "Keep Pulling."
	PullReadyMessage   = "Getting data"
	pullReadyOffset    = 150
)

// PullMessage is the pull-to-refresh caption for a pull distance. Ranges are
// closed; offsets that fall between two ranges or below zero get the default.
func PullMessage(offset float64) string {
	if offset > pullReadyOffset {
		return PullReadyMessage
	}
	for _, step := range pullSteps {
		if offset >= step.min && offset <= step.max {
			return step.message
		}
	}
	return pullDefaultMessage
}
