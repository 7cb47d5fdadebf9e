package district

// kaohsiungDistricts lists the 38 administrative districts of Kaohsiung City.
var kaohsiungDistricts = []string{
	"鹽埕區", "鼓山區", "左營區", "楠梓區", "三民區", "新興區", "前金區",
	"苓雅區", "前鎮區", "旗津區", "小港區", "鳳山區", "林園區", "大寮區",
	"大樹區", "大社區", "仁武區", "鳥松區", "岡山區", "橋頭區", "燕巢區",
	"田寮區", "阿蓮區", "路竹區", "湖內區", "茄萣區", "永安區", "彌陀區",
	"梓官區", "旗山區", "美濃區", "六龜區", "甲仙區", "杉林區", "內門區",
	"茂林區", "桃源區", "那瑪夏區",
}

var kaohsiung = New(kaohsiungDistricts)

// Kaohsiung returns the reference deployment's catalog. The catalog is shared
// and immutable.
func Kaohsiung() *Catalog {
	return kaohsiung
}
