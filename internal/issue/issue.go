// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ToolNotFoundId Id = iota + 1
	UnknownVariantId
	ConfigLoadFailedId
	CheckpointMissingId
	LauncherNotAvailableId
	EvaluationFailedId
	InterpreterNotFoundId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	toolNotFoundIssue = &Issue{
		id: ToolNotFoundId,
		mdMsg: `
# Evaluation tool not found!

The evaluation entry point could not be located, so nothing was launched.

## Things you can try:
- Check that you are running from the segmentation directory (the one
  containing the evaluation entry point):
~~~
$ cd /path/to/segmentation
$ poolctl eval s24
~~~

- Point poolctl at the tool explicitly:
~~~
$ poolctl eval s24 --tool /path/to/test.py
~~~

- Or set it permanently in your config:
~~~cue
tool: "/path/to/test.py"
~~~`,
	}

	unknownVariantIssue = &Issue{
		id: UnknownVariantId,
		mdMsg: `
# Unknown model variant!

The variant you asked for is not part of the PoolFormer family.

## Things you can try:
- List the known variants:
~~~
$ poolctl list
~~~

- Check for typos: variant names are lower-case (s12, s24, s36, m36, m48)`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the poolctl configuration file.

## Configuration file locations:
- Linux: ~/.config/poolctl/config.cue
- macOS: ~/Library/Application Support/poolctl/config.cue
- Windows: %APPDATA%\poolctl\config.cue

## Things you can try:
- Create a default configuration:
~~~
$ poolctl config init
~~~

- Check the configuration syntax
- Remove the config file to use defaults

## Example configuration:
~~~cue
tool:        "test.py"
interpreter: "python3"
show_dir:    "output"

ui: {
  verbose: false
}
~~~`,
	}

	checkpointMissingIssue = &Issue{
		id: CheckpointMissingId,
		mdMsg: `
# Checkpoint file not found!

The trained weights for this variant are missing from the checkpoint
directory, so the evaluation tool would fail immediately.

## Things you can try:
- Download the released checkpoint and place it under ../checkpoint/
  (relative to the segmentation directory)
- Verify the file name matches the variant, e.g.:
~~~
../checkpoint/fpn_poolformer_s24_ade20k_40k.ckpt
~~~`,
	}

	launcherNotAvailableIssue = &Issue{
		id: LauncherNotAvailableId,
		mdMsg: `
# Launcher not available!

The selected launcher mode cannot run on this system.

## Available launchers:
- **native**: spawns the evaluation tool directly as a child process
- **virtual**: runs the invocation through the built-in shell interpreter

## Things you can try:
- Switch launchers:
~~~
$ poolctl eval s24 --launcher virtual
~~~

- Or change the default in your config:
~~~cue
default_launcher: "virtual"
~~~`,
	}

	evaluationFailedIssue = &Issue{
		id: EvaluationFailedId,
		mdMsg: `
# Evaluation failed!

The evaluation tool started but exited with a non-zero status. poolctl
propagates that status unchanged and does not retry.

## Common causes:
- Missing or corrupt checkpoint file
- Dataset not prepared (ADE20K images/annotations not in place)
- CUDA / GPU memory errors inside the tool

## Things you can try:
- Re-run with verbose mode to see the full command line:
~~~
$ poolctl --verbose eval s24
~~~

- Inspect the tool's own output above for the underlying error`,
	}

	interpreterNotFoundIssue = &Issue{
		id: InterpreterNotFoundId,
		mdMsg: `
# Interpreter not found!

The evaluation tool is a script, but its interpreter is not on PATH.

## Things you can try:
- Install Python 3 and make sure it is on your PATH
- Point poolctl at a specific interpreter:
~~~cue
interpreter: "/usr/local/bin/python3"
~~~`,
	}

	issues = map[Id]*Issue{
		toolNotFoundIssue.Id():         toolNotFoundIssue,
		unknownVariantIssue.Id():       unknownVariantIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		checkpointMissingIssue.Id():    checkpointMissingIssue,
		launcherNotAvailableIssue.Id(): launcherNotAvailableIssue,
		evaluationFailedIssue.Id():     evaluationFailedIssue,
		interpreterNotFoundIssue.Id():  interpreterNotFoundIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
