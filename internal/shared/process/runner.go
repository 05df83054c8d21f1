package process

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Runner is the only component that spawns external binaries. Every
// execution produces exactly one persisted process row whose lifecycle is
// running -> success|failed, and exactly one terminal value on the returned
// channel.
type Runner struct {
	writer *Writer
}

func NewRunner(writer *Writer) *Runner {
	return &Runner{writer: writer}
}

// Execute spawns command and returns the running process together with a
// channel that receives the terminal process once the child exits. When
// commandID is nil a fresh unique id is allocated.
func (r *Runner) Execute(command []string, commandType string, commandID *string, args map[string]interface{}) (*Process, <-chan *Process) {
	if commandID == nil {
		id := r.newCommandID()
		commandID = &id
	}

	processChan := make(chan *Process, 1)

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Env = cleanEnvForSystemBinaries()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		proc := r.spawnFailure(command, *commandID, commandType, args, err)
		processChan <- proc
		close(processChan)
		return proc, processChan
	}

	pid := cmd.Process.Pid
	startTime := time.Now().UTC()

	argsJSON, _ := json.Marshal(args)
	processID, err := r.writer.CreateProcess(
		strings.Join(command, " "),
		*commandID,
		pid,
		StatusRunning,
		commandType,
		args,
		startTime,
	)
	if err != nil {
		log.Printf("failed to create process record: %v", err)
	}

	proc := &Process{
		ID:        &processID,
		Command:   strings.Join(command, " "),
		CommandID: *commandID,
		PID:       pid,
		Status:    StatusRunning,
		StartTime: startTime,
		Type:      commandType,
		Args:      args,
		ArgsJSON:  string(argsJSON),
	}

	go r.waitForCompletion(cmd, proc, &stdout, &stderr, processChan)

	return proc, processChan
}

// spawnFailure records an execution that never produced a child. The row is
// written terminal immediately so /status lookups still resolve.
func (r *Runner) spawnFailure(command []string, commandID, commandType string, args map[string]interface{}, spawnErr error) *Process {
	now := time.Now().UTC()
	errMsg := spawnErr.Error()
	returnCode := -1

	proc := &Process{
		Command:    strings.Join(command, " "),
		CommandID:  commandID,
		PID:        0,
		Status:     StatusFailed,
		Error:      &errMsg,
		ReturnCode: &returnCode,
		StartTime:  now,
		EndTime:    &now,
		Type:       commandType,
		Args:       args,
	}

	processID, err := r.writer.CreateProcess(proc.Command, commandID, 0, StatusFailed, commandType, args, now)
	if err != nil {
		log.Printf("failed to record spawn failure: %v", err)
		return proc
	}
	proc.ID = &processID
	if err := r.writer.UpdateProcessStatus(processID, StatusFailed, nil, &errMsg, &returnCode, &now); err != nil {
		log.Printf("failed to record spawn failure: %v", err)
	}
	return proc
}

func (r *Runner) waitForCompletion(cmd *exec.Cmd, proc *Process, stdout, stderr *bytes.Buffer, processChan chan *Process) {
	defer close(processChan)

	err := cmd.Wait()
	endTime := time.Now().UTC()
	proc.EndTime = &endTime

	outputStr := stdout.String()
	errorStr := stderr.String()

	returnCode := cmd.ProcessState.ExitCode()
	proc.ReturnCode = &returnCode

	// mariabackup writes its progress to stderr even on success, so a clean
	// exit merges both streams into output. Failures keep them split for
	// diagnosis.
	if returnCode == 0 {
		var combined string
		if outputStr != "" {
			combined = outputStr
		}
		if errorStr != "" {
			if combined != "" {
				combined += "\n"
			}
			combined += errorStr
		}
		if combined != "" {
			proc.Output = &combined
		}
	} else {
		if outputStr != "" {
			proc.Output = &outputStr
		}
		if errorStr != "" {
			proc.Error = &errorStr
		}
	}

	if err != nil || returnCode != 0 {
		proc.Status = StatusFailed
	} else {
		proc.Status = StatusSuccess
	}

	if proc.ID != nil {
		err := r.writer.UpdateProcessStatus(
			*proc.ID,
			proc.Status,
			proc.Output,
			proc.Error,
			proc.ReturnCode,
			proc.EndTime,
		)
		if err != nil {
			log.Printf("failed to update process status: %v", err)
		}
	}

	processChan <- proc
}

// ExecuteConsecutive runs commands in order under a single command id. The
// first process is returned synchronously so the caller can answer with an
// id; the channel receives only the terminal process of the chain: the last
// command on success, or the first one that exited non-zero. Remaining steps
// are skipped after a failure.
func (r *Runner) ExecuteConsecutive(commands [][]string, commandType string, args map[string]interface{}) (*Process, <-chan *Process) {
	commandID := r.newCommandID()
	masterChan := make(chan *Process, 1)
	firstChan := make(chan *Process, 1)

	go r.runCommandsSequentially(commands, commandType, commandID, args, masterChan, firstChan)

	return <-firstChan, masterChan
}

func (r *Runner) runCommandsSequentially(commands [][]string, commandType, commandID string, args map[string]interface{}, masterChan, firstChan chan *Process) {
	defer close(masterChan)
	defer close(firstChan)

	var lastProcess *Process

	for i, command := range commands {
		proc, processChan := r.Execute(command, commandType, &commandID, args)

		if i == 0 {
			firstChan <- proc
		}

		completed := <-processChan
		lastProcess = completed

		if completed.ReturnCode != nil && *completed.ReturnCode != 0 {
			log.Printf("command failed with return code %d, stopping chain", *completed.ReturnCode)
			break
		}
	}

	if lastProcess != nil {
		masterChan <- lastProcess
	}
}

// newCommandID allocates a uuid not yet present in the process table.
func (r *Runner) newCommandID() string {
	for {
		candidate := uuid.New().String()
		existing, err := r.writer.GetProcessByCommandID(candidate)
		if err != nil {
			log.Printf("failed to check command id uniqueness: %v", err)
			return candidate
		}
		if existing == nil {
			return candidate
		}
	}
}

// cleanEnvForSystemBinaries drops the bundle's LD_LIBRARY_PATH override so
// system binaries like mariabackup link against the system libraries.
func cleanEnvForSystemBinaries() []string {
	var cleanEnv []string
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, "LD_LIBRARY_PATH=") {
			cleanEnv = append(cleanEnv, e)
		}
	}
	cleanEnv = append(cleanEnv, "LD_LIBRARY_PATH=/usr/lib/x86_64-linux-gnu:/usr/lib:/lib")
	return cleanEnv
}
