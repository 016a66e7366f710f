package nfse

// Party is the identity and address block of a tomador (buyer) or prestador (seller).
type Party struct {
	Documento    string `json:"documento"`
	IM           string `json:"im"`
	IE           string `json:"ie"`
	Nome         string `json:"nome"`
	Logradouro   string `json:"logradouro"`
	Numero       string `json:"numero"`
	Bairro       string `json:"bairro"`
	Complemento  string `json:"complemento"`
	Cidade       string `json:"cidade"`
	UF           string `json:"uf"`
	CEP          string `json:"cep"`
	Pais         string `json:"pais"`
	Telefone     string `json:"telefone"`
	Email        string `json:"email"`
	CidadeCodigo string `json:"cidadeCodigo"`
}

// Nota is the invoice record. Every leaf is a string; missing data is "".
type Nota struct {
	Tomador          Party  `json:"tomador"`
	Prestador        Party  `json:"prestador"`
	Tipo             string `json:"tipo"`
	Origem           string `json:"origem"`
	Numero           string `json:"numero"`
	Chave            string `json:"chave"`
	EmissaoData      string `json:"emissaoData"`
	NumeroRps        string `json:"numeroRps"`
	Serie            string `json:"serie"`
	MunicipioCodigo  string `json:"municipioCodigo"`
	ServicoCodigo    string `json:"servicoCodigo"`
	DescricaoServico string `json:"descricaoServico"`
	Descricao        string `json:"descricao"`
	ServicoValor     string `json:"servicoValor"`
	IssAliquota      string `json:"issAliquota"`
	IssValor         string `json:"issValor"`
	PisRetido        string `json:"pisRetido"`
	CofinsRetido     string `json:"cofinsRetido"`
	InssRetido       string `json:"inssRetido"`
	IrrfRetido       string `json:"irrfRetido"`
	CsllRetido       string `json:"csllRetido"`
	DeducaoValor     string `json:"deducaoValor"`
	TotalValor       string `json:"totalValor"`
}

// Arquivo describes the uploaded file.
type Arquivo struct {
	Nome string `json:"nome"`
	Tipo string `json:"tipo"`
}

type Dados struct {
	Nota    Nota    `json:"nota"`
	Arquivo Arquivo `json:"arquivo"`
}

// Envelope is the response body of /generate, on success and on failure.
type Envelope struct {
	Sucesso   bool   `json:"sucesso"`
	Mensagem  string `json:"mensagem"`
	Dados     Dados  `json:"dados"`
	PDFBase64 string `json:"pdf_base64,omitempty"`
}

const (
	defaultTipo   = "inbox"
	defaultOrigem = "download"
	fileTipo      = "pdf"
)

// emptyEnvelope is the full schema with every leaf empty.
func emptyEnvelope() Envelope {
	return Envelope{
		Dados: Dados{
			Nota:    Nota{Tipo: defaultTipo, Origem: defaultOrigem},
			Arquivo: Arquivo{Tipo: fileTipo},
		},
	}
}

// NewErrorEnvelope builds the failure body. dados still carries the whole
// schema so consumers never branch on missing keys.
func NewErrorEnvelope(message string) Envelope {
	env := emptyEnvelope()
	env.Sucesso = false
	env.Mensagem = message
	return env
}

var partyKeys = []string{
	"documento", "im", "ie", "nome", "logradouro", "numero", "bairro", "complemento",
	"cidade", "uf", "cep", "pais", "telefone", "email", "cidadeCodigo",
}

var notaKeys = []string{
	"tipo", "origem", "numero", "chave", "emissaoData", "numeroRps", "serie",
	"municipioCodigo", "servicoCodigo", "descricaoServico", "descricao", "servicoValor",
	"issAliquota", "issValor", "pisRetido", "cofinsRetido", "inssRetido", "irrfRetido",
	"csllRetido", "deducaoValor", "totalValor",
}

func (p *Party) fields() map[string]*string {
	return map[string]*string{
		"documento": &p.Documento, "im": &p.IM, "ie": &p.IE, "nome": &p.Nome,
		"logradouro": &p.Logradouro, "numero": &p.Numero, "bairro": &p.Bairro,
		"complemento": &p.Complemento, "cidade": &p.Cidade, "uf": &p.UF, "cep": &p.CEP,
		"pais": &p.Pais, "telefone": &p.Telefone, "email": &p.Email, "cidadeCodigo": &p.CidadeCodigo,
	}
}

func (n *Nota) fields() map[string]*string {
	return map[string]*string{
		"tipo": &n.Tipo, "origem": &n.Origem, "numero": &n.Numero, "chave": &n.Chave,
		"emissaoData": &n.EmissaoData, "numeroRps": &n.NumeroRps, "serie": &n.Serie,
		"municipioCodigo": &n.MunicipioCodigo, "servicoCodigo": &n.ServicoCodigo,
		"descricaoServico": &n.DescricaoServico, "descricao": &n.Descricao,
		"servicoValor": &n.ServicoValor, "issAliquota": &n.IssAliquota, "issValor": &n.IssValor,
		"pisRetido": &n.PisRetido, "cofinsRetido": &n.CofinsRetido, "inssRetido": &n.InssRetido,
		"irrfRetido": &n.IrrfRetido, "csllRetido": &n.CsllRetido, "deducaoValor": &n.DeducaoValor,
		"totalValor": &n.TotalValor,
	}
}
