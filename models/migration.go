package models

import (
	"log"

	"bitbucket.org/mmdatafocus/fabric_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Fabric{},
		&InventoryLog{},
		&ProcessedOrder{},
		&Setting{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
