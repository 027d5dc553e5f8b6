package service

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"auctionscan/conf"
	"auctionscan/model"
)

var DB *gorm.DB

// Init opens the MySQL cache and syncs the table structure to the code.
func Init() {
	var err error
	DB, err = gorm.Open(mysql.Open(conf.MysqlDsn+"?charset=utf8mb4&parseTime=True&loc=Local"), &gorm.Config{PrepareStmt: true})
	if err != nil {
		panic(err)
	}
	if conf.ResetDB {
		if err = model.DropTable(DB); err != nil {
			panic(err)
		}
	}
	if err = model.Migrate(DB); err != nil {
		panic(err)
	}
}
