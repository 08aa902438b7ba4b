package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"elevbank/src/types"
)

const invalidParameters = "Invalid parameters"

type requestElevatorBody struct {
	Floor     *int             `json:"floor"`
	Direction *types.Direction `json:"direction"`
}

type selectFloorBody struct {
	ElevatorID *int `json:"elevatorId"`
	Floor      *int `json:"floor"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type carStatus struct {
	ID            int               `json:"id"`
	CurrentFloor  int               `json:"currentFloor"`
	State         types.MotionState `json:"state"`
	TargetFloors  []int             `json:"targetFloors"`
	IsOpeningDoor bool              `json:"isOpeningDoor"`
}

type floorCalls struct {
	Up   bool `json:"up"`
	Down bool `json:"down"`
}

type statusResponse struct {
	Elevators        []carStatus  `json:"elevators"`
	ExternalRequests []floorCalls `json:"externalRequests"`
}

func (s *Server) handleRequestElevator(w http.ResponseWriter, r *http.Request) {
	var body requestElevatorBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Floor == nil || body.Direction == nil {
		writeError(w, http.StatusBadRequest, invalidParameters)
		return
	}
	if err := s.bank.RequestElevator(*body.Floor, *body.Direction); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleSelectFloor(w http.ResponseWriter, r *http.Request) {
	var body selectFloorBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ElevatorID == nil || body.Floor == nil {
		writeError(w, http.StatusBadRequest, invalidParameters)
		return
	}
	if err := s.bank.SelectFloor(*body.ElevatorID, *body.Floor); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.bank.Reset()
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	status := s.bank.Status()
	resp := statusResponse{
		Elevators:        make([]carStatus, len(status.Cars)),
		ExternalRequests: make([]floorCalls, len(status.Calls)),
	}
	for i, car := range status.Cars {
		resp.Elevators[i] = carStatus{
			ID:            car.ID,
			CurrentFloor:  car.Floor,
			State:         car.State,
			TargetFloors:  car.InternalFloors(),
			IsOpeningDoor: car.DoorOpen,
		}
	}
	for floor, cells := range status.Calls {
		resp.ExternalRequests[floor] = floorCalls{
			Up:   cells[types.Up].IsPending(),
			Down: cells[types.Down].IsPending(),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	if status >= http.StatusInternalServerError {
		slog.Warn("Request failed", "err", msg)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
