package webhook

import (
	"encoding/json"
	"net/http"
)

// mappingRequest is the body for mapping add and remove operations.
type mappingRequest struct {
	Phone string `json:"phone"`
	Tool  string `json:"tool,omitempty"`
}

// handleMappings manages the phone-to-tool routing table.
//
//	GET    returns the current mappings
//	POST   adds or replaces a mapping {phone, tool}
//	DELETE removes a mapping {phone}
func (s *Server) handleMappings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"mappings": s.phones.All(),
			"fallback": s.phones.Fallback(),
		})

	case http.MethodPost:
		var req mappingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Tool == "" {
			s.writeError(w, http.StatusBadRequest, "Tool name is required")
			return
		}
		if !s.registry.Has(req.Tool) {
			s.writeError(w, http.StatusBadRequest, "Unknown tool: "+req.Tool)
			return
		}
		if !s.phones.Add(req.Phone, req.Tool) {
			s.writeError(w, http.StatusBadRequest, "Phone number is required")
			return
		}
		s.logger.Info().Str("tool", req.Tool).Msg("Phone mapping added")
		s.writeJSON(w, http.StatusOK, map[string]string{"phone": req.Phone, "tool": req.Tool})

	case http.MethodDelete:
		var req mappingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if !s.phones.Remove(req.Phone) {
			s.writeError(w, http.StatusNotFound, "Mapping not found")
			return
		}
		s.logger.Info().Msg("Phone mapping removed")
		s.writeJSON(w, http.StatusOK, map[string]string{"phone": req.Phone})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// toolInfo describes a registered tool in admin listings.
type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// handleTools lists the registered tools.
func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tools := make([]toolInfo, 0)
	for _, t := range s.registry.All() {
		tools = append(tools, toolInfo{Name: t.Name(), Description: t.Description()})
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"tools": tools})
}
