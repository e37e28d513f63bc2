package dto

import "cnpgdemo/shared/constant"

type HealthResponse struct {
	Status    string `json:"status"     example:"healthy"`
	PrimaryDB string `json:"primary_db" example:"up"`
	ReplicaDB string `json:"replica_db" example:"up"`
}

func (r *HealthResponse) FromChecks(primaryUp, replicaUp bool) {
	r.PrimaryDB = state(primaryUp)
	r.ReplicaDB = state(replicaUp)

	r.Status = constant.HealthStatusUnhealthy
	if primaryUp && replicaUp {
		r.Status = constant.HealthStatusHealthy
	}
}

func state(up bool) string {
	if up {
		return constant.HealthStateUp
	}

	return constant.HealthStateDown
}
