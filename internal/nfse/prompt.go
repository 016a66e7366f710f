package nfse

// NotFound is the sentinel the normalize stage writes for missing values. The
// convert stage maps it back to an empty string.
const NotFound = "Não encontrado"

// BuildNormalizePrompt wraps raw PDF text in the stage-1 instructions that lay
// it out as TOMADOR / PRESTADOR / DADOS DA NOTA sections. The text is embedded
// verbatim, with no truncation.
func BuildNormalizePrompt(rawText string) string {
	return normalizeHead + rawText + normalizeTail
}

// BuildJSONPrompt wraps the stage-1 layout in the stage-2 instructions that map
// it onto the fixed JSON schema.
func BuildJSONPrompt(organizedText string) string {
	return convertHead + organizedText + convertTail
}

const normalizeHead = `
Você é um assistente inteligente que organiza dados de notas fiscais eletrônicas (NFSe) em texto limpo e estruturado.

Sua tarefa é ler o conteúdo bruto extraído de um PDF de nota fiscal e organizar as informações de forma clara e legível.

INSTRUÇÕES:
1. Organize as informações em seções claras: TOMADOR, PRESTADOR, DADOS DA NOTA
2. Se algum campo não for encontrado, escreva "Não encontrado"
3. Nunca invente dados, use apenas o que está disponível no texto
4. Seja muito cuidadoso para não misturar dados do tomador com prestador
5. Apresente as informações de forma organizada e fácil de ler
6. Mantenha a formatação limpa

FORMATO DE RESPOSTA ESPERADO:

=== TOMADOR ===
Documento (CNPJ/CPF): [valor ou "Não encontrado"]
Inscrição Municipal: [valor ou "Não encontrado"]
Inscrição Estadual: [valor ou "Não encontrado"]
Nome: [valor ou "Não encontrado"]
Logradouro: [valor ou "Não encontrado"]
Número: [valor ou "Não encontrado"]
Bairro: [valor ou "Não encontrado"]
Complemento: [valor ou "Não encontrado"]
Cidade: [valor ou "Não encontrado"]
UF: [valor ou "Não encontrado"]
CEP: [valor ou "Não encontrado"]
País: [valor ou "Não encontrado"]
Telefone: [valor ou "Não encontrado"]
Email: [valor ou "Não encontrado"]
Código da Cidade: [valor ou "Não encontrado"]

=== PRESTADOR ===
Documento (CNPJ/CPF): [valor ou "Não encontrado"]
Inscrição Municipal: [valor ou "Não encontrado"]
Inscrição Estadual: [valor ou "Não encontrado"]
Nome: [valor ou "Não encontrado"]
Logradouro: [valor ou "Não encontrado"]
Número: [valor ou "Não encontrado"]
Bairro: [valor ou "Não encontrado"]
Complemento: [valor ou "Não encontrado"]
Cidade: [valor ou "Não encontrado"]
UF: [valor ou "Não encontrado"]
CEP: [valor ou "Não encontrado"]
País: [valor ou "Não encontrado"]
Telefone: [valor ou "Não encontrado"]
Email: [valor ou "Não encontrado"]
Código da Cidade: [valor ou "Não encontrado"]

=== DADOS DA NOTA ===
Número: [valor ou "Não encontrado"]
Chave de Acesso: [valor ou "Não encontrado"]
Data de Emissão: [valor ou "Não encontrado"]
Número RPS: [valor ou "Não encontrado"]
Série: [valor ou "Não encontrado"]
Código do Município: [valor ou "Não encontrado"]
Código do Serviço: [valor ou "Não encontrado"]
Descrição do Serviço: [valor ou "Não encontrado"]
Descrição da Nota: [valor ou "Não encontrado"]
Valor do Serviço: [valor ou "Não encontrado"]
Alíquota ISS: [valor ou "Não encontrado"]
Valor ISS: [valor ou "Não encontrado"]
PIS Retido: [valor ou "Não encontrado"]
COFINS Retido: [valor ou "Não encontrado"]
INSS Retido: [valor ou "Não encontrado"]
IRRF/IR Retido: [valor ou "Não encontrado"]
CSLL Retido: [valor ou "Não encontrado"]
Valor Total: [valor ou "Não encontrado"]

Conteúdo bruto da nota extraído do PDF:
"""
`

const normalizeTail = `
"""
    `

const convertHead = `
Você é um assistente que converte dados organizados de notas fiscais em JSON estruturado.

Sua tarefa é pegar o texto organizado abaixo e converter EXATAMENTE para o formato JSON especificado.

REGRAS IMPORTANTES:
1. Se um campo contém "Não encontrado"ou "-", use string vazia ""
2. Para valores monetários, extraia apenas os números (ex: "R$ 123,45" vira "123.45")
3. Para datas, use formato DD/MM/AAAA
4. Retorne APENAS o JSON válido, sem texto adicional
5. Use aspas duplas no JSON
6. Não invente dados que não estão no texto

FORMATO JSON EXATO:
{
    "sucesso": true,
    "mensagem": "",
    "dados": {
        "nota": {
            "tomador": {
                "documento": "",
                "im": "",
                "ie": "",
                "nome": "",
                "logradouro": "",
                "numero": "",
                "bairro": "",
                "complemento": "",
                "cidade": "",
                "uf": "",
                "cep": "",
                "pais": "",
                "telefone": "",
                "email": "",
                "cidadeCodigo": ""
            },
            "prestador": {
                "documento": "",
                "im": "",
                "ie": "",
                "nome": "",
                "logradouro": "",
                "numero": "",
                "bairro": "",
                "complemento": "",
                "cidade": "",
                "uf": "",
                "cep": "",
                "pais": "",
                "telefone": "",
                "email": "",
                "cidadeCodigo": ""
            },
            "tipo": "inbox",
            "origem": "download",
            "numero": "",
            "chave": "",
            "emissaoData": "",
            "numeroRps": "",
            "serie": "",
            "municipioCodigo": "",
            "servicoCodigo": "",
            "descricaoServico": "",
            "descricao": "",
            "servicoValor": "",
            "issAliquota": "",
            "issValor": "",
            "pisRetido": "",
            "cofinsRetido": "",
            "inssRetido": "",
            "irrfRetido": "",
            "csllRetido": "",
            "deducaoValor": "",
            "totalValor": ""
        },
        "arquivo": {
            "nome": "",
            "tipo": "pdf"
        }
    }
}

Texto organizado da nota fiscal:
"""
`

const convertTail = `
"""

Retorne APENAS o JSON:
    `
