package socket

import (
	"encoding/json"
	"fmt"

	"github.com/mschot/dbcalm-open-backend/internal/dbcmd/adapter"
	"github.com/mschot/dbcalm-open-backend/internal/dbcmd/config"
	"github.com/mschot/dbcalm-open-backend/internal/dbcmd/handler"
	"github.com/mschot/dbcalm-open-backend/internal/dbcmd/validator"
	sharedProcess "github.com/mschot/dbcalm-open-backend/internal/shared/process"
	sharedSocket "github.com/mschot/dbcalm-open-backend/internal/shared/socket"
	"github.com/mschot/dbcalm-open-backend/internal/shared/types"
)

// DbCommandProcessor dispatches the closed set of db commands after
// validation. Accepted jobs return 202 with the command id; completion is
// observed through the status endpoint, never through this socket.
type DbCommandProcessor struct {
	config       *config.Config
	adapter      adapter.Adapter
	validator    *validator.Validator
	queueHandler *handler.QueueHandler
}

func NewDbCommandProcessor(cfg *config.Config, adptr adapter.Adapter, valid *validator.Validator, qHandler *handler.QueueHandler) *DbCommandProcessor {
	return &DbCommandProcessor{
		config:       cfg,
		adapter:      adptr,
		validator:    valid,
		queueHandler: qHandler,
	}
}

func (p *DbCommandProcessor) ProcessRequest(data []byte) sharedSocket.CommandResponse {
	var req sharedSocket.CommandRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return sharedSocket.CommandResponse{
			Code:    400,
			Status:  "Bad Request",
			Message: fmt.Sprintf("Invalid JSON: %v", err),
		}
	}

	validationResult := p.validator.Validate(req.Cmd, req.Args)
	if validationResult.Code != types.StatusOK {
		return sharedSocket.CommandResponse{
			Code:    validationResult.Code,
			Status:  sharedSocket.GetStatusText(validationResult.Code),
			Message: validationResult.Message,
		}
	}

	var proc *sharedProcess.Process
	var procChan <-chan *sharedProcess.Process
	var err error

	switch req.Cmd {
	case "full_backup":
		id := req.Args["id"].(string)
		proc, procChan, err = p.adapter.FullBackup(id, scheduleIDArg(req.Args))

	case "incremental_backup":
		id := req.Args["id"].(string)
		fromBackupID := req.Args["from_backup_id"].(string)
		proc, procChan, err = p.adapter.IncrementalBackup(id, fromBackupID, scheduleIDArg(req.Args))

	case "restore_backup":
		var idList []string
		if idListRaw, ok := req.Args["id_list"]; ok {
			switch v := idListRaw.(type) {
			case []interface{}:
				for _, item := range v {
					if str, ok := item.(string); ok {
						idList = append(idList, str)
					}
				}
			case []string:
				idList = v
			}
		}
		target := req.Args["target"].(string)
		proc, procChan, err = p.adapter.RestoreBackup(idList, target)

	default:
		return sharedSocket.CommandResponse{
			Code:    400,
			Status:  "Bad Request",
			Message: fmt.Sprintf("Unknown command: %s", req.Cmd),
		}
	}

	if err != nil {
		return sharedSocket.CommandResponse{
			Code:    500,
			Status:  "Internal Server Error",
			Message: fmt.Sprintf("Failed to execute command: %v", err),
		}
	}

	p.queueHandler.Handle(procChan)

	return sharedSocket.CommandResponse{
		Code:   202,
		Status: "Accepted",
		ID:     proc.CommandID,
	}
}

func scheduleIDArg(args map[string]interface{}) *int {
	if sid, ok := args["schedule_id"].(float64); ok {
		sidInt := int(sid)
		return &sidInt
	}
	return nil
}
