package services

import "github.com/vsinha/lotrecon/pkg/domain/entities"

// ShipmentIssues checks a lot's shipping entry against its production date.
// An unparseable ship date yields IssueInvalidShipDate. A ship date earlier
// than a known production date yields IssueShipBeforeProduction. Without a
// production date the ordering check is skipped.
func ShipmentIssues(productionDate *entities.Date, shipment *entities.Shipment) []entities.IssueType {
	if shipment == nil {
		return nil
	}
	if shipment.ShipDate == nil {
		return []entities.IssueType{entities.IssueInvalidShipDate}
	}
	if productionDate != nil && shipment.ShipDate.Before(*productionDate) {
		return []entities.IssueType{entities.IssueShipBeforeProduction}
	}
	return nil
}
