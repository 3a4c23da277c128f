package cmd

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rasyadazka/todolist/internal/config"
)

// completionCommand prints a completion script for the named shell.
func completionCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todolist completion", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: todolist completion SHELL")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Supported shells: bash, zsh, fish, powershell")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) != 1 {
		fs.Usage()
		return fmt.Errorf("usage: todolist completion SHELL")
	}

	switch strings.ToLower(remaining[0]) {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	case "powershell", "pwsh":
		fmt.Print(powershellCompletion)
	default:
		return fmt.Errorf("unsupported shell %q (expected bash, zsh, fish, or powershell)", remaining[0])
	}
	return nil
}

const bashCompletion = `# todolist bash completion
#
# Install: source this file from ~/.bashrc, or copy it to
# /etc/bash_completion.d/todolist.

_todolist() {
    local cur prev
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    local commands="add ls rm clear tui doctor tail init completion version help"
    local flags="-tasks -schema -log-dir -log-level -log-format -log-timestamps -log-caller"

    case "${prev}" in
        -log-level)
            COMPREPLY=( $(compgen -W "debug info warn error fatal" -- "${cur}") )
            return 0
            ;;
        -log-format)
            COMPREPLY=( $(compgen -W "text json logfmt" -- "${cur}") )
            return 0
            ;;
        -tasks|-schema|-log-dir)
            COMPREPLY=( $(compgen -f -- "${cur}") )
            return 0
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh fish powershell" -- "${cur}") )
            return 0
            ;;
    esac

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "${commands} ${flags}" -- "${cur}") )
        return 0
    fi

    COMPREPLY=( $(compgen -f -- "${cur}") )
}

complete -F _todolist todolist
`

const zshCompletion = `#compdef todolist
# todolist zsh completion
#
# Install: copy this file to a directory on your $fpath as _todolist.

_todolist() {
    local -a commands
    commands=(
        'add:Add a task with a name and a due date'
        'ls:List tasks ordered by due date'
        'rm:Remove a task by its list number'
        'clear:Remove all tasks'
        'tui:Open the interactive screen'
        'doctor:Check the tasks file, schema, and log directory'
        'tail:Print the activity log'
        'init:Create the tasks file, schema, and todolist.toml'
        'completion:Print a shell completion script'
        'version:Show version information'
        'help:Show usage'
    )

    if (( CURRENT == 2 )); then
        _describe 'command' commands
        return
    fi

    case "${words[2]}" in
        completion)
            _values 'shell' bash zsh fish powershell
            ;;
        *)
            _files
            ;;
    esac
}

_todolist "$@"
`

const fishCompletion = `# todolist fish completion
#
# Install: copy this file to ~/.config/fish/completions/todolist.fish.

complete -c todolist -f

complete -c todolist -n __fish_use_subcommand -a add -d 'Add a task with a name and a due date'
complete -c todolist -n __fish_use_subcommand -a ls -d 'List tasks ordered by due date'
complete -c todolist -n __fish_use_subcommand -a rm -d 'Remove a task by its list number'
complete -c todolist -n __fish_use_subcommand -a clear -d 'Remove all tasks'
complete -c todolist -n __fish_use_subcommand -a tui -d 'Open the interactive screen'
complete -c todolist -n __fish_use_subcommand -a doctor -d 'Check the tasks file, schema, and log directory'
complete -c todolist -n __fish_use_subcommand -a tail -d 'Print the activity log'
complete -c todolist -n __fish_use_subcommand -a init -d 'Create the tasks file, schema, and todolist.toml'
complete -c todolist -n __fish_use_subcommand -a completion -d 'Print a shell completion script'
complete -c todolist -n __fish_use_subcommand -a version -d 'Show version information'
complete -c todolist -n __fish_use_subcommand -a help -d 'Show usage'

complete -c todolist -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish powershell'
complete -c todolist -n '__fish_seen_subcommand_from ls tui doctor' -F
`

const powershellCompletion = `# todolist PowerShell completion
#
# Install: add this script to your PowerShell profile.

Register-ArgumentCompleter -Native -CommandName todolist -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)

    $commands = @('add', 'ls', 'rm', 'clear', 'tui', 'doctor', 'tail', 'init', 'completion', 'version', 'help')
    $commands | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
    }
}
`
